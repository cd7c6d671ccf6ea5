package platform

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Resy simulation parameters, chosen to approximate the real API's behavior.
const (
	resyDefaultDelay       = 300 * time.Millisecond
	resyAvailabilityRate   = 0.7
	resyCreateFailureRate  = 0.05
	resyCancelFailureRate  = 0.02
	resyModifyFailureRate  = 0.10
	resyConfirmationPrefix = "RESY-"
)

var resySlotTimes = []string{"17:00", "17:30", "18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00"}

// ResyClient simulates the Resy booking API.
type ResyClient struct {
	logger            *slog.Logger
	apiKey            string
	delay             time.Duration
	createFailureRate float64
	rng               *rand.Rand
}

var _ Client = (*ResyClient)(nil)

// ResyOption configures a ResyClient.
type ResyOption func(*ResyClient)

// WithResyDelay overrides the simulated network delay.
func WithResyDelay(d time.Duration) ResyOption {
	return func(c *ResyClient) { c.delay = d }
}

// WithResyRand overrides the randomness source, for deterministic tests.
func WithResyRand(rng *rand.Rand) ResyOption {
	return func(c *ResyClient) { c.rng = rng }
}

// WithResyCreateFailureRate overrides the simulated booking failure rate.
func WithResyCreateFailureRate(rate float64) ResyOption {
	return func(c *ResyClient) { c.createFailureRate = rate }
}

func NewResyClient(apiKey string, logger *slog.Logger, opts ...ResyOption) *ResyClient {
	c := &ResyClient{
		logger:            logger,
		apiKey:            apiKey,
		delay:             resyDefaultDelay,
		createFailureRate: resyCreateFailureRate,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ResyClient) Name() string { return "resy" }

func (c *ResyClient) GetAvailability(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int) ([]Availability, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	slots := make([]Availability, 0, len(resySlotTimes))
	for _, t := range resySlotTimes {
		slot := Availability{
			Date:      date,
			Time:      t,
			PartySize: partySize,
			Available: c.rng.Float64() < resyAvailabilityRate,
		}
		if slot.Available {
			slot.Token = randomToken(c.rng, "tok_", 13)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func (c *ResyClient) CreateBooking(ctx context.Context, req BookingRequest) (*Confirmation, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	if c.rng.Float64() < c.createFailureRate {
		c.logger.WarnContext(ctx, "resy booking rejected",
			slog.String("restaurant_id", req.RestaurantID.String()),
			slog.String("time", req.Time))
		return nil, ErrSlotTaken
	}

	return &Confirmation{
		ConfirmationID: resyConfirmationPrefix + randomID(c.rng, 8),
		RestaurantID:   req.RestaurantID,
		Date:           req.Date,
		Time:           req.Time,
		PartySize:      req.PartySize,
		Status:         "confirmed",
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
	}, nil
}

func (c *ResyClient) GetBooking(ctx context.Context, confirmationID string) (*Confirmation, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	return &Confirmation{
		ConfirmationID: confirmationID,
		Date:           time.Now(),
		Time:           "19:00",
		PartySize:      2,
		Status:         "confirmed",
	}, nil
}

func (c *ResyClient) CancelBooking(ctx context.Context, confirmationID string) error {
	if err := sleep(ctx, c.delay); err != nil {
		return err
	}

	if c.rng.Float64() < resyCancelFailureRate {
		return ErrCancellationFailed
	}
	return nil
}

func (c *ResyClient) ModifyBooking(ctx context.Context, confirmationID string, newDate *time.Time, newTime *string, newPartySize *int) (*Confirmation, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}

	if c.rng.Float64() < resyModifyFailureRate {
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
