package model

// PlotState represents the growth phase of a single plot
type PlotState string

const (
	PlotLocked  PlotState = "locked"  // Not yet unlocked by captures
	PlotEmpty   PlotState = "empty"   // Unlocked, nothing planted
	PlotPlanted PlotState = "planted" // Growing, counting down turns
	PlotReady   PlotState = "ready"   // Transient; harvested within the same tick
)

// CropType names a crop defined in the game ruleset
type CropType string

// Plot is a per-player timed resource-production unit
type Plot struct {
	Index             int       `json:"index"`
	State             PlotState `json:"state"`
	Crop              CropType  `json:"crop,omitempty"`
	TurnsRemaining    int       `json:"turns_remaining,omitempty"`
	UnlockRequirement int       `json:"unlock_requirement"`
}

// ValidatePlots checks that a client-supplied plot list is well formed:
// indexes match positions, states are known, and planted plots carry a
// crop and a positive countdown. It is used to vet reconnect snapshots
// before they may supersede the server-held record.
func ValidatePlots(plots []Plot) error {
	if len(plots) == 0 {
		return ErrMalformedSnapshot
	}
	for i, p := range plots {
		if p.Index != i {
			return ErrMalformedSnapshot
		}
		switch p.State {
		case PlotLocked, PlotEmpty:
			if p.Crop != "" || p.TurnsRemaining != 0 {
				return ErrMalformedSnapshot
			}
		case PlotPlanted:
			if p.Crop == "" || p.TurnsRemaining <= 0 {
				return ErrMalformedSnapshot
			}
		case PlotReady:
			if p.Crop == "" {
				return ErrMalformedSnapshot
			}
		default:
			return ErrMalformedSnapshot
		}
	}
	return nil
}
