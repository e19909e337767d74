package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

// QuizCache caches catalog reads with a TTL to avoid repeated file/DB/HTTP hits.
type QuizCache struct {
	next  app.QuizCatalog
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu      sync.RWMutex
	quizzes map[string]cachedQuiz
	lists   map[string]cachedList
}

type cachedQuiz struct {
	quiz      domain.QuizDefinition
	expiresAt time.Time
}

type cachedList struct {
	quizzes   []domain.QuizMetadata
	expiresAt time.Time
}

func NewQuizCache(next app.QuizCatalog, ttl time.Duration) *QuizCache {
	return &QuizCache{
		next:    next,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		quizzes: make(map[string]cachedQuiz),
		lists:   make(map[string]cachedList),
	}
}

func (c *QuizCache) LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error) {
	key := topic + "/" + quizID
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.quizzes[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("quiz:"+key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.quizzes[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.next.LoadQuiz(ctx, quizID, topic)
		if err != nil {
			return domain.QuizDefinition{}, err
		}

		c.mu.Lock()
		c.quizzes[key] = cachedQuiz{quiz: quiz, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return result.(domain.QuizDefinition), nil
}

func (c *QuizCache) ListQuizzes(ctx context.Context, topic string) ([]domain.QuizMetadata, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.lists[topic]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quizzes, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("list:"+topic, func() (interface{}, error) {
		quizzes, err := c.next.ListQuizzes(ctx, topic)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.lists[topic] = cachedList{quizzes: quizzes, expiresAt: c.clock().Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizMetadata), nil
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
