package cli

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/keepup/internal/habits/application/commands"
	"github.com/felixgeelhaar/keepup/internal/habits/application/queries"
	"github.com/felixgeelhaar/keepup/internal/habits/domain"
)

// ErrNotInitialized is returned when a command runs without an App.
var ErrNotInitialized = errors.New("application not initialized - check KEEPUP_* configuration")

// SubjectResolver determines the wallet and user contract the commands act on.
type SubjectResolver func(ctx context.Context) (domain.Subject, error)

// App holds the CLI application dependencies.
type App struct {
	// Command Handlers
	AddTaskHandler      *commands.AddTaskHandler
	CompleteTaskHandler *commands.CompleteTaskHandler
	RemoveTaskHandler   *commands.RemoveTaskHandler
	ClaimRewardHandler  *commands.ClaimRewardHandler
	SetCategoryHandler  *commands.SetCategoryHandler

	// Query Handlers
	GetTaskBoardHandler      *queries.GetTaskBoardHandler
	GetRewardsSummaryHandler *queries.GetRewardsSummaryHandler
	ListProofsHandler        *queries.ListProofsHandler

	resolveSubject SubjectResolver
	subject        *domain.Subject
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	addTaskHandler *commands.AddTaskHandler,
	completeTaskHandler *commands.CompleteTaskHandler,
	removeTaskHandler *commands.RemoveTaskHandler,
	claimRewardHandler *commands.ClaimRewardHandler,
	setCategoryHandler *commands.SetCategoryHandler,
	getTaskBoardHandler *queries.GetTaskBoardHandler,
	getRewardsSummaryHandler *queries.GetRewardsSummaryHandler,
	listProofsHandler *queries.ListProofsHandler,
) *App {
	return &App{
		AddTaskHandler:           addTaskHandler,
		CompleteTaskHandler:      completeTaskHandler,
		RemoveTaskHandler:        removeTaskHandler,
		ClaimRewardHandler:       claimRewardHandler,
		SetCategoryHandler:       setCategoryHandler,
		GetTaskBoardHandler:      getTaskBoardHandler,
		GetRewardsSummaryHandler: getRewardsSummaryHandler,
		ListProofsHandler:        listProofsHandler,
	}
}

// SetSubjectResolver updates the subject resolver.
func (a *App) SetSubjectResolver(resolve SubjectResolver) {
	a.resolveSubject = resolve
	a.subject = nil
}

// Subject resolves the subject once and returns the first unmet
// precondition for ledger access, if any.
func (a *App) Subject(ctx context.Context) (domain.Subject, error) {
	if a.subject != nil {
		return *a.subject, a.subject.Ready()
	}
	if a.resolveSubject == nil {
		return domain.Subject{}, domain.ErrWalletNotConnected
	}
	subject, err := a.resolveSubject(ctx)
	if err != nil {
		return subject, err
	}
	a.subject = &subject
	return subject, subject.Ready()
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
