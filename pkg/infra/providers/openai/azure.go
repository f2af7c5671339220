package openai

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/openai/openai-go/v2/option"
)

const (
	defaultAzureAPIVersion = "2024-10-21"
	azureScope             = "https://cognitiveservices.azure.com/.default"
)

// azureOptions routes requests to an Azure OpenAI deployment. The configured
// model is the deployment name.
func (c *Client) azureOptions(az *providers.AzureCredentials) []option.RequestOption {
	apiVersion := az.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAzureAPIVersion
	}
	opts := []option.RequestOption{
		option.WithBaseURL(fmt.Sprintf("%s/openai/deployments/%s/", strings.TrimSuffix(az.Endpoint, "/"), c.config.Model)),
		option.WithQuery("api-version", apiVersion),
	}
	if c.config.Credentials.ApiKey != "" {
		return append(opts, option.WithHeader("api-key", c.config.Credentials.ApiKey))
	}
	return append(opts, option.WithMiddleware(c.azureTokens.middleware))
}

// azureTokenSource authenticates with the default Azure credential chain.
type azureTokenSource struct {
	once sync.Once
	cred azcore.TokenCredential
	err  error
}

func (s *azureTokenSource) middleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	s.once.Do(func() {
		s.cred, s.err = azidentity.NewDefaultAzureCredential(nil)
	})
	if s.err != nil {
		return nil, fmt.Errorf("failed to create azure credential: %w", s.err)
	}
	token, err := s.cred.GetToken(req.Context(), policy.TokenRequestOptions{
		Scopes: []string{azureScope},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get azure token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	return next(req)
}
