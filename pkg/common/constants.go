package common

const (
	ClientIDHeader = "X-Client-Id"
	ClientIDQuery  = "client_id"
	ModelQuery     = "model"

	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	AnonymousClientPrefix = "anon_"
)
