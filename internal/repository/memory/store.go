// Package memory 仓储接口的内存实现，供服务与 handler 测试使用
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/repository/interfaces"
)

// Store 事务串行执行，fn 出错时恢复事务开始前的数据
type Store struct {
	txMu sync.Mutex

	mu         sync.Mutex
	sessions   map[string]game_runtime.BattleSession
	characters map[string]game_runtime.Character
	updateErr  error
	clock      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions:   make(map[string]game_runtime.BattleSession),
		characters: make(map[string]game_runtime.Character),
		clock:      time.Now,
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, exec boil.ContextExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	sessions := maps.Clone(s.sessions)
	characters := maps.Clone(s.characters)
	s.mu.Unlock()

	if err := fn(ctx, nil); err != nil {
		s.mu.Lock()
		s.sessions = sessions
		s.characters = characters
		s.mu.Unlock()
		return err
	}
	return nil
}

// SetUpdateError 之后的 UpdateProgress 都返回 err，传 nil 恢复
func (s *Store) SetUpdateError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
}

// Session 读取会话当前状态
func (s *Store) Session(token string) (game_runtime.BattleSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	return session, ok
}

func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Character 读取角色当前状态
func (s *Store) Character(id string) (game_runtime.Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[id]
	return c, ok
}

// PutCharacter 直接写入角色，覆盖同 ID 的记录
func (s *Store) PutCharacter(c game_runtime.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[c.ID] = c
}

func (s *Store) CharacterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.characters)
}

// Sessions 会话仓储视图
func (s *Store) Sessions() interfaces.BattleSessionRepository { return sessionRepo{s} }

// Characters 角色仓储视图
func (s *Store) Characters() interfaces.CharacterRepository { return characterRepo{s} }

type sessionRepo struct{ *Store }

func (r sessionRepo) Create(_ context.Context, _ boil.ContextExecutor, session *game_runtime.BattleSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.SessionToken]; ok {
		return interfaces.ErrDuplicate
	}
	r.sessions[session.SessionToken] = *session
	return nil
}

func (r sessionRepo) GetByToken(_ context.Context, _ boil.ContextExecutor, token string) (*game_runtime.BattleSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &session, nil
}

func (r sessionRepo) MarkUsed(_ context.Context, _ boil.ContextExecutor, token string, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok || session.IsUsed {
		return false, nil
	}
	session.IsUsed = true
	session.UsedAt.SetValid(usedAt)
	r.sessions[token] = session
	return true, nil
}

func (r sessionRepo) PurgeExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, session := range r.sessions {
		if !session.IsUsed && session.ExpiresAt.Before(cutoff) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

type characterRepo struct{ *Store }

func (r characterRepo) Create(_ context.Context, _ boil.ContextExecutor, c *game_runtime.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.characters {
		if existing.UserID == c.UserID && existing.Name == c.Name {
			return interfaces.ErrDuplicate
		}
	}
	if _, ok := r.characters[c.ID]; ok {
		return interfaces.ErrDuplicate
	}
	c.CreatedAt = r.clock()
	c.UpdatedAt = c.CreatedAt
	r.characters[c.ID] = *c
	return nil
}

func (r characterRepo) get(id string) (*game_runtime.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.characters[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &c, nil
}

func (r characterRepo) GetByID(_ context.Context, _ boil.ContextExecutor, id string) (*game_runtime.Character, error) {
	return r.get(id)
}

func (r characterRepo) GetByIDForUpdate(_ context.Context, _ boil.ContextExecutor, id string) (*game_runtime.Character, error) {
	return r.get(id)
}

func (r characterRepo) ListByUser(_ context.Context, _ boil.ContextExecutor, userID string) ([]*game_runtime.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*game_runtime.Character, 0)
	for _, c := range r.characters {
		if c.UserID == userID {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *game_runtime.Character) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r characterRepo) CountByUser(ctx context.Context, exec boil.ContextExecutor, userID string) (int, error) {
	list, err := r.ListByUser(ctx, exec, userID)
	return len(list), err
}

func (r characterRepo) ExistsByName(_ context.Context, _ boil.ContextExecutor, userID, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.characters {
		if c.UserID == userID && c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r characterRepo) Delete(_ context.Context, _ boil.ContextExecutor, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.characters[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.characters, id)
	return nil
}

func (r characterRepo) UpdateProgress(_ context.Context, _ boil.ContextExecutor, c *game_runtime.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.characters[c.ID]; !ok {
		return interfaces.ErrNotFound
	}
	c.UpdatedAt = r.clock()
	r.characters[c.ID] = *c
	return nil
}
