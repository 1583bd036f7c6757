package banksdk

import "context"

// GetLiveness reports whether the process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return getJSON[HealthResponse](ctx, c, "/livez")
}

// GetReadiness reports whether the service can take traffic. A degraded
// service answers 503, which surfaces as an *APIError.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return getJSON[HealthResponse](ctx, c, "/readyz")
}

// GetJWKS fetches the keys session tokens are signed with.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	return getJSON[JWKSResponse](ctx, c, "/.well-known/jwks.json")
}
