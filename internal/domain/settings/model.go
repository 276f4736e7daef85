package settings

import "time"

// AlertType son los canales de aviso configurados por la granja.
// @Enum app, sms, whatsapp
type AlertType string

const (
	AlertApp      AlertType = "app"
	AlertSMS      AlertType = "sms"
	AlertWhatsApp AlertType = "whatsapp"
)

func (a AlertType) Valid() bool {
	return a == AlertApp || a == AlertSMS || a == AlertWhatsApp
}

// BreedingSettings son los parámetros reproductivos por granja.
// Todos los rangos se validan al guardar (ver validate.go); el motor de
// breeding confía en que llegan ya validados.
type BreedingSettings struct {
	FarmID string

	MinimumBreedingAgeMonths int // [12,24]
	DefaultGestationDays     int // [260,300]
	DaysPregnantAtDryoff     int // [180,250], < gestación, periodo seco 30-90d
	PostpartumDelayDays      int // [30,120]
	HeatCycleDays            int // [15,35]
	PregnancyCheckDays       int // [30,90]
	MissedHeatAlertDays      int // [20,60]
	HeatRetryDays            int // [15,35]
	DiagnosisIntervalDays    int // [30,90]

	CostPerAI float64 // >= 0

	AlertTypes []AlertType // no vacío

	UpdatedAt time.Time
}

// Defaults son los valores que recibe una granja sin settings guardados.
func Defaults(farmID string) BreedingSettings {
	return BreedingSettings{
		FarmID:                   farmID,
		MinimumBreedingAgeMonths: 15,
		DefaultGestationDays:     280,
		DaysPregnantAtDryoff:     220,
		PostpartumDelayDays:      60,
		HeatCycleDays:            21,
		PregnancyCheckDays:       45,
		MissedHeatAlertDays:      42,
		HeatRetryDays:            21,
		DiagnosisIntervalDays:    60,
		CostPerAI:                0,
		AlertTypes:               []AlertType{AlertApp},
	}
}
