// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/capture"
	"github.com/speakclear-dev/speakclear/internal/chat"
	"github.com/speakclear-dev/speakclear/internal/config"
	"github.com/speakclear-dev/speakclear/internal/content"
	"github.com/speakclear-dev/speakclear/internal/flow"
	"github.com/speakclear-dev/speakclear/internal/history"
	"github.com/speakclear-dev/speakclear/internal/log"
)

// ViewState represents the current state of the TUI.
type ViewState int

const (
	StateWelcome ViewState = iota
	StateLanguage
	StateLoading
	StateAssessment
	StateRecording
	StateReview
	StateSubmitting
	StateResults
	StateChat
)

// ChatMessage represents a single message in the chat transcript view.
type ChatMessage struct {
	Role    string // "user", "assistant"
	Content string
}

// Model is the main TUI model that holds all application state.
type Model struct {
	// State management
	State            ViewState
	Err              error
	LoadingStartTime time.Time

	// Configuration
	Cfg     *config.Config
	HomeDir string

	// Domain state
	Flow        *flow.Controller
	Content     *content.Provider
	Client      *api.Client
	ChatSession *chat.Session
	Store       *history.Store
	Logger      *log.Logger

	// Capture wiring. A capture.Session is single-use, so the device and
	// format are kept here and a fresh session is created per trial.
	CaptureDevice capture.Device
	CaptureCfg    capture.Config
	Capture       *capture.Session

	// Current prompt being read aloud
	Prompt api.ReadingPrompt

	// Spinner shared by the loading, recording, and submitting screens.
	Spinner spinner.Model

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a new Model with the given configuration and wired
// dependencies.
func NewModel(cfg *config.Config, homeDir string, fc *flow.Controller, provider *content.Provider, client *api.Client, device capture.Device, captureCfg capture.Config, store *history.Store, logger *log.Logger) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		State:   StateWelcome,
		Cfg:     cfg,
		HomeDir: homeDir,

		Flow:    fc,
		Content: provider,
		Client:  client,
		Store:   store,
		Logger:  logger,

		CaptureDevice: device,
		CaptureCfg:    captureCfg,

		Spinner: sp,

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}
