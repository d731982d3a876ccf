package fill

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vpetrenko/formfill-agent/internal/discover"
	"github.com/vpetrenko/formfill-agent/internal/mapper"
)

// JobContext is the seam to the external job/orchestration layer: the engine
// writes progress and intermediate artifacts into it but does not own their
// persistence or broadcast.
type JobContext interface {
	ID() string
	Log(message, level string)
	UpdateState(state State)
	SetError(message string)
	SetDetectedFields(fields []discover.Field)
	SetFieldMapping(m mapper.Mapping)
	SetMissingFields(labels []string)
}

// LocalJob is the in-process JobContext used by the CLI: it keeps the log in
// memory and mirrors it to the structured logger.
type LocalJob struct {
	id     string
	logger zerolog.Logger

	mu       sync.Mutex
	state    State
	errMsg   string
	log      []string
	fields   []discover.Field
	mapping  mapper.Mapping
	missing  []string
}

func NewLocalJob(logger zerolog.Logger) *LocalJob {
	return &LocalJob{id: uuid.NewString(), logger: logger, state: StateQueued}
}

func (j *LocalJob) ID() string { return j.id }

func (j *LocalJob) Log(message, level string) {
	j.mu.Lock()
	j.log = append(j.log, fmt.Sprintf("[%s] %s", level, message))
	j.mu.Unlock()
	switch level {
	case "error":
		j.logger.Error().Str("job", j.id).Msg(message)
	case "warn":
		j.logger.Warn().Str("job", j.id).Msg(message)
	default:
		j.logger.Info().Str("job", j.id).Msg(message)
	}
}

func (j *LocalJob) UpdateState(state State) {
	j.mu.Lock()
	j.state = state
	j.mu.Unlock()
	j.logger.Info().Str("job", j.id).Str("state", string(state)).Msg("state change")
}

func (j *LocalJob) SetError(message string) {
	j.mu.Lock()
	j.errMsg = message
	j.mu.Unlock()
}

func (j *LocalJob) SetDetectedFields(fields []discover.Field) {
	j.mu.Lock()
	j.fields = fields
	j.mu.Unlock()
}

func (j *LocalJob) SetFieldMapping(m mapper.Mapping) {
	j.mu.Lock()
	j.mapping = m
	j.mu.Unlock()
}

func (j *LocalJob) SetMissingFields(labels []string) {
	j.mu.Lock()
	j.missing = labels
	j.mu.Unlock()
}

func (j *LocalJob) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *LocalJob) Error() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.errMsg
}

func (j *LocalJob) LogLines() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.log...)
}
