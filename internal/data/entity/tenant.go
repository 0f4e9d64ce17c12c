package entity

type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierStarter  SubscriptionTier = "starter"
	TierPro      SubscriptionTier = "pro"
	TierBusiness SubscriptionTier = "business"
)

type Tenant struct {
	BaseNoDelete
	Slug     string           `db:"slug"`
	Name     string           `db:"name"`
	IsActive bool             `db:"is_active"`
	Tier     SubscriptionTier `db:"subscription_tier"`
}
