package billing

import "context"

// Feature gates de plan conocidos por el servicio.
const (
	FeatureUnlimitedAnimals = "animals:unlimited"
	FeatureTeamMembers      = "team:members"
	FeatureSMSAlerts        = "alerts:sms"
)

// PlanResolver responde si la granja tiene una feature habilitada por su plan.
type PlanResolver interface {
	HasFeature(ctx context.Context, farmID, feature string) (bool, error)
}
