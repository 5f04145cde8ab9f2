package providers

import (
	"net/http"
	"os"
	"path/filepath"
	"susrolld/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
)

// Logger is the application-wide logging facade. The type enum routes
// a line into the app or access log file.
type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == http.MethodPost {
		return TypePost
	}
	return TypeGet
}

type LogProvider struct {
	app    zerolog.Logger
	access zerolog.Logger
	files  []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	mode := os.FileMode(conf.Logger.Mode)
	appFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		return nil, err
	}
	accessFile, err := os.OpenFile(filepath.Join(conf.Logger.Dir, "access.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
	if err != nil {
		appFile.Close()
		return nil, err
	}

	lp := &LogProvider{
		app:    zerolog.New(appFile).Level(level).With().Timestamp().Logger(),
		access: zerolog.New(accessFile).Level(level).With().Timestamp().Logger(),
		files:  []*os.File{appFile, accessFile},
	}
	if conf.Debug {
		lp.app = lp.app.Level(zerolog.DebugLevel).Output(zerolog.ConsoleWriter{Out: os.Stderr})
		lp.access = lp.access.Level(zerolog.DebugLevel)
	}
	return lp, nil
}

func (lp *LogProvider) byType(t TypeEnum) *zerolog.Logger {
	if t == TypeApp {
		return &lp.app
	}
	return &lp.access
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.byType(t).Error().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.byType(t).Warn().Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.byType(t).Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.byType(t).Info().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.byType(t).Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
}
