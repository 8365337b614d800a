package initialization

import (
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/internal/controllers"
	"github.com/leadflow/leadflow/internal/dispatcher"
	"github.com/leadflow/leadflow/internal/managers"
	"github.com/leadflow/leadflow/internal/orchestrator"
	"github.com/leadflow/leadflow/internal/planner"
	"github.com/leadflow/leadflow/internal/storage/postgres"
	"github.com/leadflow/leadflow/pkg/domain"
	"github.com/leadflow/leadflow/pkg/integrations/airtable"
	"github.com/leadflow/leadflow/pkg/integrations/companysearch"
	"github.com/leadflow/leadflow/pkg/integrations/gmail"
	"github.com/leadflow/leadflow/pkg/integrations/hunter"
	"github.com/leadflow/leadflow/pkg/integrations/openai"
	"github.com/leadflow/leadflow/pkg/integrations/scraper"
)

// AppDependencies is the wired object graph of the service.
type AppDependencies struct {
	Config *Config

	ConnectionStore   domain.ConnectionStore
	CredentialManager domain.CredentialManager
	SessionService    domain.SessionService

	AgentController      *controllers.AgentController
	ConnectionController *controllers.ConnectionController
}

// BuildAppDependencies creates and wires all service dependencies bottom-up.
func BuildAppDependencies(ctx context.Context, config *Config) (*AppDependencies, error) {
	log.Info().Msg("Building service dependencies")

	pool, err := postgres.NewPool(ctx, config.PostgresURI)
	if err != nil {
		return nil, err
	}

	connectionStore := postgres.NewConnectionStore(pool)

	tokenRefresher := managers.NewTokenRefreshManager(managers.TokenRefreshManagerDependencies{
		ConnectionStore: connectionStore,
		Providers: map[domain.Provider]managers.OAuthProviderConfig{
			domain.ProviderGmail:    managers.GoogleOAuthProviderConfig(config.GoogleClientID, config.GoogleClientSecret),
			domain.ProviderAirtable: managers.AirtableOAuthProviderConfig(config.AirtableClientID, config.AirtableClientSecret),
		},
	})

	credentialManager := managers.NewCredentialManager(managers.CredentialManagerDependencies{
		ConnectionStore: connectionStore,
		TokenRefresher:  tokenRefresher,
	})

	sessionService := managers.NewSessionManager()

	openaiClient := goopenai.NewClient(config.OpenAIAPIKey)

	intentParser := planner.NewPlanner(planner.PlannerDependencies{
		Client: openaiClient,
		Model:  config.OpenAIModel,
	})

	workflowDispatcher := dispatcher.NewDispatcher(dispatcher.DispatcherDependencies{
		CRMClient:       airtable.NewClient(),
		MailSender:      gmail.NewSender(),
		EmailFinder:     hunter.NewClient(config.HunterAPIKey),
		CompanySearcher: companysearch.NewClient(config.CompanySearchURL),
		Scraper:         scraper.New(),
		TextGenerator: openai.NewTextGenerator(openai.TextGeneratorDependencies{
			Client: openaiClient,
			Model:  config.OpenAIModel,
		}),
	})

	agentService := orchestrator.NewOrchestrator(orchestrator.OrchestratorDependencies{
		SessionService:    sessionService,
		IntentParser:      intentParser,
		CredentialManager: credentialManager,
		Dispatcher:        workflowDispatcher,
	})

	agentController := controllers.NewAgentController(controllers.AgentControllerDependencies{
		AgentService:   agentService,
		SessionService: sessionService,
	})

	connectionController := controllers.NewConnectionController(controllers.ConnectionControllerDependencies{
		ConnectionStore: connectionStore,
	})

	return &AppDependencies{
		Config:               config,
		ConnectionStore:      connectionStore,
		CredentialManager:    credentialManager,
		SessionService:       sessionService,
		AgentController:      agentController,
		ConnectionController: connectionController,
	}, nil
}
