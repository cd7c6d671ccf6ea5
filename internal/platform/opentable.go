package platform

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// OpenTable simulation parameters.
const (
	openTableDefaultDelay       = 250 * time.Millisecond
	openTableAvailabilityRate   = 0.6
	openTableCreateFailureRate  = 0.03
	openTableCancelFailureRate  = 0.01
	openTableModifyFailureRate  = 0.08
	openTableConfirmationPrefix = "OT-"
)

var openTableSlotTimes = []string{"17:00", "17:30", "18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00", "21:30"}

// OpenTableClient simulates the OpenTable reservation API.
type OpenTableClient struct {
	logger            *slog.Logger
	clientID          string
	clientSecret      string
	delay             time.Duration
	createFailureRate float64
	rng               *rand.Rand
}

var _ Client = (*OpenTableClient)(nil)

// OpenTableOption configures an OpenTableClient.
type OpenTableOption func(*OpenTableClient)

// WithOpenTableDelay overrides the simulated network delay.
func WithOpenTableDelay(d time.Duration) OpenTableOption {
	return func(c *OpenTableClient) { c.delay = d }
}

// WithOpenTableRand overrides the randomness source, for deterministic tests.
func WithOpenTableRand(rng *rand.Rand) OpenTableOption {
	return func(c *OpenTableClient) { c.rng = rng }
}

// WithOpenTableCreateFailureRate overrides the simulated reservation failure
// rate.
func WithOpenTableCreateFailureRate(rate float64) OpenTableOption {
	return func(c *OpenTableClient) { c.createFailureRate = rate }
}

func NewOpenTableClient(clientID, clientSecret string, logger *slog.Logger, opts ...OpenTableOption) *OpenTableClient {
	c := &OpenTableClient{
		logger:            logger,
		clientID:          clientID,
		clientSecret:      clientSecret,
		delay:             openTableDefaultDelay,
		createFailureRate: openTableCreateFailureRate,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenTableClient) Name() string { return "opentable" }

func (c *OpenTableClient) GetAvailability(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int) ([]Availability, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	slots := make([]Availability, 0, len(openTableSlotTimes))
	for _, t := range openTableSlotTimes {
		slot := Availability{
			Date:      date,
			Time:      t,
			PartySize: partySize,
			Available: c.rng.Float64() < openTableAvailabilityRate,
		}
		if slot.Available {
			slot.Token = randomToken(c.rng, "ottoken_", 16)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (c *OpenTableClient) CreateBooking(ctx context.Context, req BookingRequest) (*Confirmation, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	if c.rng.Float64() < c.createFailureRate {
		c.logger.WarnContext(ctx, "opentable reservation rejected",
			slog.String("restaurant_id", req.RestaurantID.String()),
			slog.String("time", req.Time))
		return nil, ErrSlotTaken
	}

	return &Confirmation{
		ConfirmationID: openTableConfirmationPrefix + randomID(c.rng, 10),
		RestaurantID:   req.RestaurantID,
		Date:           req.Date,
		Time:           req.Time,
		PartySize:      req.PartySize,
		Status:         "confirmed",
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
	}, nil
}

func (c *OpenTableClient) GetBooking(ctx context.Context, confirmationID string) (*Confirmation, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	return &Confirmation{
		ConfirmationID: confirmationID,
		Date:           time.Now(),
		Time:           "19:30",
		PartySize:      4,
		Status:         "confirmed",
	}, nil
}

func (c *OpenTableClient) CancelBooking(ctx context.Context, confirmationID string) error {
	if err := sleep(ctx, c.delay); err != nil {
		return err
	}

	if c.rng.Float64() < openTableCancelFailureRate {
		return ErrBookingNotFound
	}
	return nil
}

func (c *OpenTableClient) ModifyBooking(ctx context.Context, confirmationID string, newDate *time.Time, newTime *string, newPartySize *int) (*Confirmation, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	if c.rng.Float64() < openTableModifyFailureRate {
		return nil, ErrModifyUnavailable
	}

	booking, err := c.GetBooking(ctx, confirmationID)
	if err != nil {
		return nil, err
	}
	if newDate != nil {
		booking.Date = *newDate
	}
	if newTime != nil {
		booking.Time = *newTime
	}
	if newPartySize != nil {
		booking.PartySize = *newPartySize
	}
	return booking, nil
}
