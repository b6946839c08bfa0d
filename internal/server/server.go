// Package server wires all components and creates the MCP server instance.
//
// This is the composition root: it creates concrete implementations
// (backend client, session store, journal, metrics) and injects them into
// the agent, tools, prompts and resources that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/HendryAvila/hostline/internal/backend"
	"github.com/HendryAvila/hostline/internal/config"
	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/HendryAvila/hostline/internal/httpapi"
	"github.com/HendryAvila/hostline/internal/journal"
	"github.com/HendryAvila/hostline/internal/metrics"
	"github.com/HendryAvila/hostline/internal/prompts"
	"github.com/HendryAvila/hostline/internal/resources"
	"github.com/HendryAvila/hostline/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Version is set at build time via ldflags.
var Version = "dev"

// openJournal is swapped in tests to simulate a journal that cannot open.
var openJournal = journal.New

// App holds every long-lived dependency. The CLI picks the surface it
// needs (MCP, HTTP or the terminal chat) from here.
type App struct {
	MCP      *server.MCPServer
	Agent    *dialogue.Agent
	Sessions *dialogue.MemoryStore
	Backend  backend.Service
	Metrics  *metrics.Metrics

	// Journal is nil when disabled or when it failed to open.
	Journal *journal.Store

	cfg *config.Config
	log zerolog.Logger
}

// New resolves all dependencies from cfg. This is the single place where
// they are created.
//
// The returned cleanup function closes the journal's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call even if the journal is disabled.
func New(cfg *config.Config, log zerolog.Logger) (*App, func(), error) {
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, noop, fmt.Errorf("backend config: %w", err)
	}
	profile := cfg.Profile()

	app := &App{
		Sessions: dialogue.NewMemoryStore(),
		Backend:  backend.NewClient(clientCfg, log.With().Str("component", "backend").Logger()),
		Metrics:  metrics.New(),
		cfg:      cfg,
		log:      log,
	}
	app.Metrics.TrackSessions(app.Sessions.Len)

	agentOpts := []dialogue.Option{
		dialogue.WithProfile(profile),
		dialogue.WithLogger(log.With().Str("component", "dialogue").Logger()),
		dialogue.WithAvailabilityCheck(cfg.Dialogue.CheckAvailability),
		dialogue.WithObserver(app.Metrics),
	}

	// --- Journal ---
	//
	// The journal is an independent subsystem: if it fails to open, the
	// agent keeps answering calls without history. We log a warning and
	// skip the journal tools.

	cleanup := noop
	if cfg.Journal.Enabled {
		j, jErr := openJournal(cfg.JournalStore())
		if jErr != nil {
			log.Warn().Err(jErr).Msg("call journal disabled")
		} else {
			app.Journal = j
			cleanup = func() {
				if err := j.Close(); err != nil {
					log.Warn().Err(err).Msg("call journal close")
				}
			}
			agentOpts = append(agentOpts, dialogue.WithRecorder(j), dialogue.WithCallerDirectory(j))
		}
	}

	app.Agent = dialogue.New(app.Sessions, app.Backend, agentOpts...)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"hostline",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(profile.Name)),
	)

	// --- Register backend tools ---

	menuTool := tools.NewMenuItemsTool(app.Backend)
	s.AddTool(menuTool.Definition(), menuTool.Handle)

	orderTool := tools.NewCreateOrderTool(app.Backend)
	s.AddTool(orderTool.Definition(), orderTool.Handle)

	availabilityTool := tools.NewAvailabilityTool(app.Backend)
	s.AddTool(availabilityTool.Definition(), availabilityTool.Handle)

	reservationTool := tools.NewCreateReservationTool(app.Backend)
	s.AddTool(reservationTool.Definition(), reservationTool.Handle)

	// --- Register dialogue tools ---

	messageTool := tools.NewHandleMessageTool(app.Agent)
	s.AddTool(messageTool.Definition(), messageTool.Handle)

	statusTool := tools.NewSessionStatusTool(app.Sessions)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	// --- Register journal tools ---

	if app.Journal != nil {
		historyTool := tools.NewCallHistoryTool(app.Journal)
		s.AddTool(historyTool.Definition(), historyTool.Handle)

		statsTool := tools.NewJournalStatsTool(app.Journal)
		s.AddTool(statsTool.Definition(), statsTool.Handle)
	}

	// --- Register prompts ---

	voicePrompt := prompts.NewVoiceAgentPrompt(profile)
	s.AddPrompt(voicePrompt.Definition(), voicePrompt.Handle)

	recapPrompt := prompts.NewCallerRecapPrompt()
	s.AddPrompt(recapPrompt.Definition(), recapPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(profile, clientCfg.Window, app.Backend)
	s.AddResource(resourceHandler.ProfileResource(), resourceHandler.HandleProfile)
	s.AddResource(resourceHandler.MenuResource(), resourceHandler.HandleMenu)

	app.MCP = s
	return app, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the journal
// is disabled or hasn't been opened.
func noop() {}

// HTTP builds the HTTP API over the same agent.
func (a *App) HTTP() *httpapi.Server {
	opts := []httpapi.Option{httpapi.WithMetrics(a.Metrics)}
	if a.Journal != nil {
		opts = append(opts, httpapi.WithCallLog(a.Journal))
	}
	return httpapi.New(a.Agent, a.log.With().Str("component", "http").Logger(), opts...)
}

// StartJanitor drops idle sessions in the background until ctx is done.
func (a *App) StartJanitor(ctx context.Context) {
	idle, every := a.cfg.Sessions.IdleTimeout, a.cfg.Sessions.SweepInterval
	go a.Sessions.RunJanitor(ctx, idle, every, a.log.With().Str("component", "sessions").Logger())
}

// serverInstructions returns the system instructions that tell the AI
// how to use hostline.
func serverInstructions(restaurant string) string {
	return fmt.Sprintf(`You have access to hostline, the phone assistant for %s.

## Two ways to handle a call

1. **Drive the call yourself** with the backend tools:
   - get_menu_items: look up real items, ids and prices. Never invent them.
   - create_order: place an order once you have items, order type, name and phone.
   - check_reservation_availability: always call before create_reservation.
   - create_reservation: book the table.
   The voice-agent prompt has the full script.

2. **Relay the call to the built-in agent** with handle_message. Send every
   caller utterance with the same caller_id and speak the returned response.
   session_status shows where that conversation stands.

## Caller history

When the call journal is enabled, call_history shows what a caller ordered
or booked before, and journal_stats summarizes all calls.

## Resources

hostline://restaurant/profile and hostline://restaurant/menu hold the
restaurant details and the live menu.`, restaurant)
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config { return a.cfg }
