package catalog

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// AuthMethod selects how the catalog connection authenticates.
type AuthMethod int

const (
	AuthPassword   AuthMethod = iota // password from the connection string
	AuthAWSIAM                       // RDS IAM token as password
	AuthGoogleIAM                    // Cloud SQL connector with IAM login
	AuthAzureEntra                   // Entra ID access token as password
)

// String returns the name used in dsdist.yaml.
func (a AuthMethod) String() string {
	switch a {
	case AuthPassword:
		return "password"
	case AuthAWSIAM:
		return "aws-iam"
	case AuthGoogleIAM:
		return "google-iam"
	case AuthAzureEntra:
		return "azure-entra"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// ParseAuthMethod parses a dsdist.yaml auth value. Empty means AuthPassword.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "password":
		return AuthPassword, nil
	case "aws-iam":
		return AuthAWSIAM, nil
	case "google-iam":
		return AuthGoogleIAM, nil
	case "azure-entra":
		return AuthAzureEntra, nil
	}
	return AuthPassword, fmt.Errorf("unknown catalog auth %q (want password, aws-iam, google-iam or azure-entra): %w", s, dsdist.ErrInvalidConfig)
}

// Auth holds the parameters of every AuthMethod.
type Auth struct {
	Method AuthMethod

	// AWSRegion falls back to $AWS_REGION.
	AWSRegion string

	// GoogleInstance is the instance connection name, project:region:instance.
	GoogleInstance string

	// Service principal credentials. When any is empty the default Azure
	// credential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// TokenProvider acquires short-lived tokens used as the Postgres password.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider without secrets.
	String() string
}

// AzureTokenProvider acquires Entra ID tokens for PostgreSQL access.
type AzureTokenProvider struct {
	credential azcore.TokenCredential
	desc       string
}

// NewAzureTokenProvider uses a service principal when tenant, client and
// secret are all set, and the default credential chain otherwise.
func NewAzureTokenProvider(tenantID, clientID, clientSecret string) (*AzureTokenProvider, error) {
	if tenantID != "" && clientID != "" && clientSecret != "" {
		cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", err)
		}
		return &AzureTokenProvider{
			credential: cred,
			desc:       fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", tenantID, clientID),
		}, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &AzureTokenProvider{credential: cred, desc: "AzureDefaultCredential"}, nil
}

func (p *AzureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *AzureTokenProvider) String() string { return p.desc }

// AWSIAMTokenProvider builds RDS IAM auth tokens from the default AWS
// credential chain.
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string
}

// NewAWSIAMTokenProvider requires the RDS endpoint, its region and the
// database user enabled for IAM login.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port): %w", dsdist.ErrInvalidConfig)
	}
	if region == "" {
		return nil, fmt.Errorf("AWS IAM auth requires region (storage.catalog.aws_region or $AWS_REGION): %w", dsdist.ErrInvalidConfig)
	}
	if username == "" {
		return nil, fmt.Errorf("AWS IAM auth requires database username: %w", dsdist.ErrInvalidConfig)
	}
	return &AWSIAMTokenProvider{endpoint: endpoint, region: region, username: username}, nil
}

// GetToken returns a token valid for 15 minutes.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}
	return token, time.Now().Add(15 * time.Minute), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}

// tokenRefreshMargin is how long before expiry a cached token is replaced.
const tokenRefreshMargin = time.Minute

// tokenSource caches a provider's token across connections.
type tokenSource struct {
	provider TokenProvider
	now      func() time.Time

	mu        sync.Mutex
	token     string
	expiresOn time.Time
}

func newTokenSource(p TokenProvider) *tokenSource {
	return &tokenSource{provider: p, now: time.Now}
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Add(tokenRefreshMargin).Before(s.expiresOn) {
		return s.token, nil
	}
	token, expiresOn, err := s.provider.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire token from %s: %w", s.provider, err)
	}
	s.token, s.expiresOn = token, expiresOn
	return token, nil
}

// beforeConnect sets the connection password to the current token.
func (s *tokenSource) beforeConnect(ctx context.Context, cfg *pgx.ConnConfig) error {
	token, err := s.Token(ctx)
	if err != nil {
		return err
	}
	cfg.Password = token
	return nil
}

// tokenProviderFor returns the provider for a token-based method, or nil.
func tokenProviderFor(a Auth, cfg *pgx.ConnConfig) (TokenProvider, error) {
	switch a.Method {
	case AuthAWSIAM:
		region := a.AWSRegion
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		endpoint := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))
		return NewAWSIAMTokenProvider(endpoint, region, cfg.User)
	case AuthAzureEntra:
		return NewAzureTokenProvider(a.AzureTenantID, a.AzureClientID, a.AzureClientSecret)
	}
	return nil, nil
}

// useCloudSQLDialer routes every connection through the Cloud SQL connector.
// The connector handles TLS and IAM login itself.
func useCloudSQLDialer(ctx context.Context, instance string, cfg *pgx.ConnConfig) (*cloudsqlconn.Dialer, error) {
	if instance == "" {
		return nil, fmt.Errorf("google-iam auth requires storage.catalog.google_instance: %w", dsdist.ErrInvalidConfig)
	}
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}
	cfg.TLSConfig = nil
	cfg.Fallbacks = nil
	cfg.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	return dialer, nil
}
