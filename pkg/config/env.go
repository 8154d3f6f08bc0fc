package config

const (
	EnvPrefix = "EDELGUUR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "EDELGUUR_APP_ENV"
	EnvPort     = "EDELGUUR_APP_PORT"
	EnvDBDSN    = "EDELGUUR_DB_DSN"
	EnvDBHost   = "EDELGUUR_DB_HOST"
	EnvDBUser   = "EDELGUUR_DB_USER"
	EnvDBName   = "EDELGUUR_DB_NAME"
	EnvDBPass   = "EDELGUUR_DB_PASSWORD"
	EnvDBPort   = "EDELGUUR_DB_PORT"
	EnvRedisURL = "EDELGUUR_REDIS_URL"

	EnvJWTSecret              = "EDELGUUR_JWT_SECRET"
	EnvJWTIssuer              = "EDELGUUR_JWT_ISSUER"
	EnvJWTExpMins             = "EDELGUUR_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "EDELGUUR_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "EDELGUUR_GCP_PROJECT_ID"
	EnvGCSBucket              = "EDELGUUR_GCS_BUCKET_NAME"
	EnvPubSubDomainTopic      = "EDELGUUR_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubOrdersTopic      = "EDELGUUR_PUBSUB_ORDERS_TOPIC"
	EnvPopularStatusID        = "EDELGUUR_POPULAR_STATUS_ID"
	EnvCORSAllowedOrigins     = "EDELGUUR_CORS_ALLOWED_ORIGINS"
)

// discreteDBEnvVars must all be present when no DSN is supplied.
var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
