package shipping

import "math"

// tariffBand is one row of the courier tariff table. MaxGrams is inclusive.
type tariffBand struct {
	MaxGrams float64
	GAM      int64
	NonGAM   int64
}

// tariffBands are the fixed weight bands up to one kilogram, in colones.
var tariffBands = []tariffBand{
	{MaxGrams: 250, GAM: 1850, NonGAM: 2150},
	{MaxGrams: 500, GAM: 1950, NonGAM: 2500},
	{MaxGrams: 1000, GAM: 2800, NonGAM: 3450},
}

// extraKiloFee is charged per started kilogram above the one-kilogram band.
const extraKiloFee = 1100

// Destination is the shipping target of an order. Both fields are required
// before any non-zero fee can be computed.
type Destination struct {
	Province string `json:"province"`
	Canton   string `json:"canton"`
}

// Complete reports whether the destination carries both required fields.
func (d Destination) Complete() bool {
	return Normalize(d.Province) != "" && Normalize(d.Canton) != ""
}

// InGAM reports metro-area membership for the destination.
func (d Destination) InGAM() bool {
	return IsGAM(d.Province, d.Canton)
}

// BaseFee returns the pre-tax shipping fee in colones for the given total
// parcel weight. Weights above one kilogram pay the one-kilogram band rate
// plus a full extra-kilo increment per started excess kilogram. An incomplete
// destination or empty parcel costs nothing; the caller distinguishes "free"
// from "not yet calculable" by checking Destination.Complete.
func BaseFee(dest Destination, totalGrams float64) int64 {
	if !dest.Complete() || totalGrams <= 0 {
		return 0
	}
	inGAM := dest.InGAM()
	for _, band := range tariffBands {
		if totalGrams <= band.MaxGrams {
			return band.rate(inGAM)
		}
	}
	oneKilo := tariffBands[len(tariffBands)-1]
	extraKilos := math.Ceil(totalGrams/1000 - 1)
	return oneKilo.rate(inGAM) + int64(extraKilos)*extraKiloFee
}

func (b tariffBand) rate(inGAM bool) int64 {
	if inGAM {
		return b.GAM
	}
	return b.NonGAM
}
