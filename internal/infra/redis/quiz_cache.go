package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-widget-service/internal/app"
	"quiz-widget-service/internal/domain"
)

// QuizCache caches quiz definitions and topic listings in Redis as JSON and falls back
// to the wrapped catalog on a miss.
// Definitions are stored as: SET quiz:def:{topic}:{quizID} <json>
// Listings are stored as:    SET quiz:list:{topic} <json>
type QuizCache struct {
	client *redis.Client
	next   app.QuizCatalog
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizCache(client *redis.Client, next app.QuizCatalog, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		next:   next,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) LoadQuiz(ctx context.Context, quizID, topic string) (domain.QuizDefinition, error) {
	key := "quiz:def:" + topic + ":" + quizID
	var quiz domain.QuizDefinition
	if c.get(ctx, key, &quiz) {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var quiz domain.QuizDefinition
		if c.get(ctx, key, &quiz) {
			return quiz, nil
		}
		quiz, err := c.next.LoadQuiz(ctx, quizID, topic)
		if err != nil {
			return domain.QuizDefinition{}, err
		}
		c.set(ctx, key, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return result.(domain.QuizDefinition), nil
}

func (c *QuizCache) ListQuizzes(ctx context.Context, topic string) ([]domain.QuizMetadata, error) {
	key := "quiz:list:" + topic
	var quizzes []domain.QuizMetadata
	if c.get(ctx, key, &quizzes) {
		return quizzes, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		quizzes, err := c.next.ListQuizzes(ctx, topic)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, quizzes)
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizMetadata), nil
}

// get reports a cache hit; Redis errors count as misses.
func (c *QuizCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *QuizCache) set(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err()
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
