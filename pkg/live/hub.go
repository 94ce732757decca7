package live

import (
	"context"
	"fmt"
	"sync"

	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/pkg/user"
	"github.com/aetas/aetas/pkg/workspace"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type Users interface {
	GetUser(ctx context.Context, id int) (user.User, error)
}

// Subscription receives the snapshots of one user. Only the newest undelivered snapshot is
// kept; older ones are dropped.
type Subscription struct {
	userId int
	ch     chan Snapshot
}

func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

func (s *Subscription) offer(snapshot Snapshot) {
	for {
		select {
		case s.ch <- snapshot:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

type session struct {
	user        user.User
	ws          *workspace.Workspace
	subscribers map[*Subscription]struct{}
	// intents counts live changes in flight without a subscription of their own.
	intents int
	// publishing keeps snapshots of one user in the order their states were produced.
	publishing sync.Mutex
}

// Hub keeps one workspace per active user and pushes fresh snapshots to the user's
// subscribers. Change notifications are coalesced per user and handled by a single worker.
type Hub struct {
	store   workspace.Store
	users   Users
	builder ViewBuilder

	mu       sync.Mutex
	sessions map[int]*session
	pending  map[int]struct{}
	wake     chan struct{}
}

func NewHub(store workspace.Store, users Users, builder ViewBuilder) *Hub {
	return &Hub{
		store:    store,
		users:    users,
		builder:  builder,
		sessions: make(map[int]*session),
		pending:  make(map[int]struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// Attach forwards table changes from the bus to the hub. The returned function detaches it.
func (h *Hub) Attach(bus *event_bus.EventBus) func() {
	return event_bus.SubscribeTyped(bus, event_bus.TableChangedEvent, func(e event_bus.EventT[event_bus.TableChanged]) error {
		h.Notify(e.Data.UserId)
		return nil
	})
}

// Notify schedules a refresh of the user's snapshot. It never blocks.
func (h *Hub) Notify(userId int) {
	h.mu.Lock()
	if _, ok := h.sessions[userId]; ok {
		h.pending[userId] = struct{}{}
	}
	h.mu.Unlock()
	h.signal()
}

// RefreshAll schedules a refresh for every active user. The day rollover uses it since the list
// buckets depend on the current day.
func (h *Hub) RefreshAll() {
	h.mu.Lock()
	for userId := range h.sessions {
		h.pending[userId] = struct{}{}
	}
	h.mu.Unlock()
	log.Debug("refreshing all live views")
	h.signal()
}

func (h *Hub) signal() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// ScheduleRollover runs RefreshAll on the cron schedule. Stop the returned scheduler on
// shutdown.
func (h *Hub) ScheduleRollover(spec string) (*cron.Cron, error) {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(spec, h.RefreshAll); err != nil {
		return nil, fmt.Errorf("invalid rollover schedule %q: %w", spec, err)
	}
	scheduler.Start()
	return scheduler, nil
}

// Run handles refreshes until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	log.Info("live view worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("live view worker stopped")
			return
		case <-h.wake:
			h.mu.Lock()
			users := make([]int, 0, len(h.pending))
			for userId := range h.pending {
				users = append(users, userId)
			}
			clear(h.pending)
			h.mu.Unlock()

			for _, userId := range users {
				h.refresh(ctx, userId)
			}
		}
	}
}

func (h *Hub) refresh(ctx context.Context, userId int) {
	h.mu.Lock()
	s, ok := h.sessions[userId]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := s.ws.Load(user.WithUser(ctx, s.user)); err != nil {
		log.Errorf("failed to refresh live view of user %d: %v", userId, err)
	}
}

// Subscribe registers a subscriber and hands it the current snapshot right away.
func (h *Hub) Subscribe(ctx context.Context, userId int) (*Subscription, error) {
	sub := &Subscription{userId: userId, ch: make(chan Snapshot, 1)}
	for {
		s, err := h.session(ctx, userId)
		if err != nil {
			return nil, err
		}

		s.publishing.Lock()
		h.mu.Lock()
		current, ok := h.sessions[userId]
		if !ok {
			h.sessions[userId] = s
			current = s
		}
		if current != s {
			// dropped and recreated meanwhile
			h.mu.Unlock()
			s.publishing.Unlock()
			continue
		}
		s.subscribers[sub] = struct{}{}
		h.mu.Unlock()

		snapshot, err := h.builder.Build(userId, s.ws.State(), s.user.Settings.WeekFirstDay)
		if err == nil {
			sub.offer(snapshot)
		}
		s.publishing.Unlock()
		if err != nil {
			h.Unsubscribe(sub)
			return nil, fmt.Errorf("failed to build snapshot: %w", err)
		}
		log.Debugf("live subscriber added for user %d", userId)
		return sub, nil
	}
}

// Unsubscribe removes the subscriber. The user's workspace is dropped once nothing uses it.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[sub.userId]
	if !ok {
		return
	}
	delete(s.subscribers, sub)
	h.dropIdle(s)
}

// Workspace returns the workspace of the user in ctx, loading it on first use. Call release once
// the change is done: a workspace without subscribers is dropped then.
func (h *Hub) Workspace(ctx context.Context) (ws *workspace.Workspace, release func(), err error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current user: %w", err)
	}
	s, err := h.session(ctx, userId)
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	if current, ok := h.sessions[userId]; ok {
		s = current
	} else {
		h.sessions[userId] = s
	}
	s.intents++
	h.mu.Unlock()

	var once sync.Once
	return s.ws, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			s.intents--
			h.dropIdle(s)
		})
	}, nil
}

// dropIdle forgets s once nothing uses it. h.mu must be held.
func (h *Hub) dropIdle(s *session) {
	if len(s.subscribers) > 0 || s.intents > 0 {
		return
	}
	if h.sessions[s.user.Id] == s {
		delete(h.sessions, s.user.Id)
		delete(h.pending, s.user.Id)
	}
}

func (h *Hub) session(ctx context.Context, userId int) (*session, error) {
	h.mu.Lock()
	s, ok := h.sessions[userId]
	h.mu.Unlock()
	if ok {
		return s, nil
	}

	u, err := h.users.GetUser(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userId, err)
	}
	created := &session{user: u, subscribers: make(map[*Subscription]struct{})}
	created.ws = workspace.New(h.store, func(state workspace.State) {
		h.publish(created, state)
	})
	if err := created.ws.Load(user.WithUser(ctx, u)); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.sessions[userId]; ok {
		return existing, nil
	}
	h.sessions[userId] = created
	return created, nil
}

func (h *Hub) publish(s *session, state workspace.State) {
	s.publishing.Lock()
	defer s.publishing.Unlock()

	h.mu.Lock()
	subscribers := make([]*Subscription, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subscribers = append(subscribers, sub)
	}
	h.mu.Unlock()
	if len(subscribers) == 0 {
		return
	}

	snapshot, err := h.builder.Build(s.user.Id, state, s.user.Settings.WeekFirstDay)
	if err != nil {
		log.Errorf("failed to build snapshot for user %d: %v", s.user.Id, err)
		return
	}
	for _, sub := range subscribers {
		sub.offer(snapshot)
	}
}
