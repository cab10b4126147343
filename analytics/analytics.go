package analytics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const flushDelay = time.Second

// Callbacks is the observer interface for order lifecycle events. Every hook
// is optional; emitting through the typed methods below is always nil-safe.
type Callbacks struct {
	OnWrapRequest func()
	OnWrapSuccess func(txHash string)
	OnWrapError   func(reason string)

	OnApproveRequest func()
	OnApproveSuccess func(txHash string)
	OnApproveError   func(reason string)

	OnCreateRequest func()
	OnCreateSuccess func(txHash string)
	OnCreateError   func(reason string)

	OnCancelRequest func()
	OnCancelSuccess func(txHash string)
	OnCancelError   func(reason string)
}

func (c *Callbacks) WrapRequest() {
	if c == nil || c.OnWrapRequest == nil {
		return
	}
	c.OnWrapRequest()
}

func (c *Callbacks) WrapSuccess(txHash string) {
	if c == nil || c.OnWrapSuccess == nil {
		return
	}
	c.OnWrapSuccess(txHash)
}

func (c *Callbacks) WrapError(reason string) {
	if c == nil || c.OnWrapError == nil {
		return
	}
	c.OnWrapError(reason)
}

func (c *Callbacks) ApproveRequest() {
	if c == nil || c.OnApproveRequest == nil {
		return
	}
	c.OnApproveRequest()
}

func (c *Callbacks) ApproveSuccess(txHash string) {
	if c == nil || c.OnApproveSuccess == nil {
		return
	}
	c.OnApproveSuccess(txHash)
}

func (c *Callbacks) ApproveError(reason string) {
	if c == nil || c.OnApproveError == nil {
		return
	}
	c.OnApproveError(reason)
}

func (c *Callbacks) CreateRequest() {
	if c == nil || c.OnCreateRequest == nil {
		return
	}
	c.OnCreateRequest()
}

func (c *Callbacks) CreateSuccess(txHash string) {
	if c == nil || c.OnCreateSuccess == nil {
		return
	}
	c.OnCreateSuccess(txHash)
}

func (c *Callbacks) CreateError(reason string) {
	if c == nil || c.OnCreateError == nil {
		return
	}
	c.OnCreateError(reason)
}

func (c *Callbacks) CancelRequest() {
	if c == nil || c.OnCancelRequest == nil {
		return
	}
	c.OnCancelRequest()
}

func (c *Callbacks) CancelSuccess(txHash string) {
	if c == nil || c.OnCancelSuccess == nil {
		return
	}
	c.OnCancelSuccess(txHash)
}

func (c *Callbacks) CancelError(reason string) {
	if c == nil || c.OnCancelError == nil {
		return
	}
	c.OnCancelError(reason)
}

type Event struct {
	Action string `json:"action"`
	Stage  string `json:"stage"`
	Detail string `json:"detail,omitempty"`
	Time   int64  `json:"time"`
}

// Emitter batches lifecycle events and dispatches them to the analytics
// endpoint after a short debounce. Emission is fire-and-forget: it never
// blocks the calling flow and never propagates failures.
type Emitter struct {
	url    string
	client *http.Client

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer
}

func NewEmitter(url string) *Emitter {
	return &Emitter{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Callbacks returns observer hooks that feed the emitter.
func (e *Emitter) Callbacks() *Callbacks {
	return &Callbacks{
		OnWrapRequest:    func() { e.add("wrap", "request", "") },
		OnWrapSuccess:    func(txHash string) { e.add("wrap", "success", txHash) },
		OnWrapError:      func(reason string) { e.add("wrap", "error", reason) },
		OnApproveRequest: func() { e.add("approve", "request", "") },
		OnApproveSuccess: func(txHash string) { e.add("approve", "success", txHash) },
		OnApproveError:   func(reason string) { e.add("approve", "error", reason) },
		OnCreateRequest:  func() { e.add("create", "request", "") },
		OnCreateSuccess:  func(txHash string) { e.add("create", "success", txHash) },
		OnCreateError:    func(reason string) { e.add("create", "error", reason) },
		OnCancelRequest:  func() { e.add("cancel", "request", "") },
		OnCancelSuccess:  func(txHash string) { e.add("cancel", "success", txHash) },
		OnCancelError:    func(reason string) { e.add("cancel", "error", reason) },
	}
}

func (e *Emitter) add(action, stage, detail string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = append(e.pending, Event{
		Action: action,
		Stage:  stage,
		Detail: detail,
		Time:   time.Now().UnixMilli(),
	})

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(flushDelay, e.flush)
}

func (e *Emitter) flush() {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("Recovered analytics flush panic: %v", r)
		}
	}()

	e.mu.Lock()
	batch := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	data, err := json.Marshal(batch)
	if err != nil {
		log.Warn().Msgf("Failed to marshal analytics batch: %s", err)
		return
	}

	resp, err := e.client.Post(e.url, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Warn().Msgf("Failed to dispatch analytics batch: %s", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Msgf("Analytics endpoint returned status %d", resp.StatusCode)
	}
}
