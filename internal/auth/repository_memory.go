package auth

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]*User),
	}
}

// Save inserts or replaces the user with the same email.
func (r *InMemoryUserRepository) Save(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if existing, ok := r.users[key]; ok && user.ID == "" {
		user.ID = existing.ID
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[key] = user
	return nil
}

func (r *InMemoryUserRepository) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.users[strings.ToLower(email)]
	return exists, nil
}

func (r *InMemoryUserRepository) FindByEmail(email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}
