package memory

import (
	"time"

	"code-analyzer-be/pkg/agent/state"

	"github.com/patrickmn/go-cache"
)

type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository() *ConversationRepository {
	// Default expiration of 1 hour, purge of expired conversations
	// every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Save(conv state.Conversation) {
	r.cache.Set(conv.ThreadID, conv, cache.DefaultExpiration)
}

func (r *ConversationRepository) Get(threadID string) (state.Conversation, bool) {
	if x, found := r.cache.Get(threadID); found {
		return x.(state.Conversation), true
	}
	return state.Conversation{}, false
}

func (r *ConversationRepository) Delete(threadID string) {
	r.cache.Delete(threadID)
}
