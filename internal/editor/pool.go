package editor

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ytget/movie-editor/internal/model"
)

// message carries one submitted command through its lifecycle
type message struct {
	id     string
	cmd    Command
	staged any
	state  model.CommandState
	inUse  bool
}

// pool recycles messages. A message goes back only after its terminal
// completion has run.
type pool struct {
	messages sync.Pool
	live     atomic.Int64
}

func newPool() *pool {
	return &pool{messages: sync.Pool{New: func() any { return new(message) }}}
}

func (p *pool) get(cmd Command) *message {
	m := p.messages.Get().(*message)
	*m = message{
		id:    newRequestID(),
		cmd:   cmd,
		state: model.CommandQueued,
		inUse: true,
	}
	p.live.Add(1)
	return m
}

func (p *pool) put(m *message) {
	if !m.inUse {
		log.Printf("Message %s released twice", m.id)
		return
	}
	*m = message{}
	p.live.Add(-1)
	p.messages.Put(m)
}

// outstanding returns the number of messages not yet released
func (p *pool) outstanding() int64 {
	return p.live.Load()
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
