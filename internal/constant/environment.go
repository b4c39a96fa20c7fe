package constant

const (
	DevelopmentEnvironment = "development"
	ProductionEnvironment  = "production"
)
