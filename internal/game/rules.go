package game

import "fmt"

// RoomRules are the per-room settings chosen by whoever creates the room.
type RoomRules struct {
	MinBid       int   `json:"minBid"`       // opening bid and the forced bid after speak-then-pass
	TargetScore  int   `json:"targetScore"`  // cumulative score that ends the match
	VoidLimit    int   `json:"voidLimit"`    // consecutive voids before the deal passes on
	Seed         int64 `json:"seed"`         // shuffle seed; 0 seeds from the clock
	FillWithBots bool  `json:"fillWithBots"` // seat bots in empty seats when a hand starts
}

const DefaultVoidLimit = 3

func DefaultRoomRules() RoomRules {
	return RoomRules{
		MinBid:      DefaultMinBid,
		TargetScore: DefaultTargetScore,
		VoidLimit:   DefaultVoidLimit,
	}
}

// Update overwrites the rules present in newRules. Missing keys keep their
// current value.
func (rules *RoomRules) Update(newRules map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	toInt := func(key string) (int64, bool, error) {
		val, exists := newRules[key]
		if !exists || val == nil {
			return 0, false, nil
		}
		// JSON numbers decode as float64
		switch v := val.(type) {
		case float64:
			return int64(v), true, nil
		case int:
			return int64(v), true, nil
		case int64:
			return v, true, nil
		}
		return 0, false, fmt.Errorf("invalid type for %s", key)
	}

	assignInt := func(field *int, key string, minVal int, step int) error {
		v, ok, err := toInt(key)
		if err != nil || !ok {
			return err
		}
		if int(v) < minVal {
			return fmt.Errorf("%s must be at least %d", key, minVal)
		}
		if step > 0 && int(v)%step != 0 {
			return fmt.Errorf("%s must be a multiple of %d", key, step)
		}
		*field = int(v)
		return nil
	}

	if err := assignInt(&rules.MinBid, "minBid", BidStep, BidStep); err != nil {
		return err
	}
	if err := assignInt(&rules.TargetScore, "targetScore", 1, 0); err != nil {
		return err
	}
	if err := assignInt(&rules.VoidLimit, "voidLimit", 1, 0); err != nil {
		return err
	}
	if v, ok, err := toInt("seed"); err != nil {
		return err
	} else if ok {
		rules.Seed = v
	}
	return assignBool(&rules.FillWithBots, "fillWithBots")
}

// ParseRules applies rules on top of current and returns the result.
func ParseRules(rules map[string]interface{}, current RoomRules) (RoomRules, error) {
	out := current
	err := out.Update(rules)
	return out, err
}
