package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skilltrack/skilltrack/internal/config"
	"github.com/skilltrack/skilltrack/internal/course"
	"github.com/skilltrack/skilltrack/internal/grading"
	"github.com/skilltrack/skilltrack/internal/llm"
	"github.com/skilltrack/skilltrack/internal/logging"
	"github.com/skilltrack/skilltrack/internal/session"
	"github.com/skilltrack/skilltrack/internal/store"
)

// runtime is what every command needs: settings, the open store, a logger
// and the session manager.
type runtime struct {
	cfg      config.Config
	dbPath   string
	store    *store.Store
	logger   *zap.Logger
	sessions *session.Manager
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SKILLTRACK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// setup reads the configuration, opens the store and builds the logger.
// Logs go to SKILLTRACK_LOG_FILE or skilltrack.log next to the database so
// they never mix with command output or the TUI.
func setup(cmd *cobra.Command) (*runtime, error) {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(filepath.Dir(dbPath), "skilltrack.log")
	}
	logger, err := logging.NewLogger(logging.Config{Env: cfg.Env, Level: cfg.LogLevel, FilePath: logFile})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}

	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	logger.Debug("store opened", zap.String("path", dbPath), zap.String("command", cmd.CommandPath()))

	return &runtime{
		cfg:      cfg,
		dbPath:   dbPath,
		store:    st,
		logger:   logger,
		sessions: session.NewManager(st.Users(), st.Sessions(), st.Events(), logger),
	}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("closing store", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

func (rt *runtime) currentFile() string {
	return session.CurrentFile(rt.dbPath)
}

// current resumes the session saved by `skilltrack login`.
func (rt *runtime) current(ctx context.Context) (*session.Session, error) {
	id, err := session.LoadCurrent(rt.currentFile())
	if err != nil {
		return nil, err
	}
	return rt.sessions.Resume(ctx, id)
}

// requireManager resumes the current session and checks its role.
func (rt *runtime) requireManager(ctx context.Context) (*session.Session, error) {
	s, err := rt.current(ctx)
	if err != nil {
		return nil, err
	}
	if !s.IsManager() {
		return nil, errors.New("this command is only available to managers")
	}
	return s, nil
}

// saveCurrent persists s as the current session, or clears it when nil.
func (rt *runtime) saveCurrent(s *session.Session) error {
	if s == nil {
		return session.ClearCurrent(rt.currentFile())
	}
	return session.SaveCurrent(rt.currentFile(), s.ID)
}

// verifier builds the answer verifier selected by SKILLTRACK_GRADING.
func (rt *runtime) verifier(ctx context.Context) (course.AnswerVerifier, error) {
	content := rt.store.Courses()
	if rt.cfg.Grading != config.GradingAssisted {
		return grading.NewExactVerifier(content), nil
	}
	provider, err := llm.NewProvider(ctx, rt.cfg.LLM, rt.store.Events(), rt.logger)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	rt.logger.Info("assisted grading enabled", zap.String("provider", rt.cfg.LLM.Provider))
	return grading.NewAssistedVerifier(content, provider, rt.logger), nil
}
