package subscription

import (
	"sync"

	"github.com/VitaminP8/termfeed/api/model"
)

// CommentFeed раздает новые комментарии подписчикам поста (SSE-лента).
type CommentFeed struct {
	mu   sync.Mutex
	subs map[string][]chan *model.Comment // postID -> список каналов подписчиков
}

func NewCommentFeed() *CommentFeed {
	return &CommentFeed{
		subs: make(map[string][]chan *model.Comment),
	}
}

func (m *CommentFeed) Subscribe(postID string) (<-chan *model.Comment, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *model.Comment, 8) // буфер, чтобы писатель не блокировался

	m.subs[postID] = append(m.subs[postID], ch)

	// функция для отписки
	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subscribers := m.subs[postID]
		for i, sub := range subscribers {
			if sub == ch {
				// Удаляем подписчика
				m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
	}

	return ch, cancel
}

func (m *CommentFeed) Publish(postID string, comment *model.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		select {
		case sub <- comment:
		default:
			// медленного подписчика не ждем - комментарий для него теряется
		}
	}
}
