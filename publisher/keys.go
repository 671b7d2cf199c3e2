package publisher

const (
	plansKey        = "plans"
	assignKeyPrefix = "assign"
)
