package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// IRedis is the live-session registry: at most one active session may exist
// per (interview, candidate) pair across all server instances.
type IRedis interface {
	AcquireSession(ctx context.Context, interviewID, candidateEmail, sessionID string, ttl time.Duration) (bool, error)
	RefreshSession(ctx context.Context, interviewID, candidateEmail string, ttl time.Duration) error
	ReleaseSession(ctx context.Context, interviewID, candidateEmail, sessionID string) error
	ActiveSession(ctx context.Context, interviewID, candidateEmail string) (string, error)
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

// NewWithClient is used by tests to run the registry against miniredis.
func NewWithClient(client *redis.Client) IRedis {
	return &redisClient{client: client}
}

func sessionKey(interviewID, candidateEmail string) string {
	return fmt.Sprintf("session:%s:%s", interviewID, candidateEmail)
}

func (r *redisClient) AcquireSession(ctx context.Context, interviewID, candidateEmail, sessionID string, ttl time.Duration) (bool, error) {
	key := sessionKey(interviewID, candidateEmail)

	ok, err := r.client.SetNX(ctx, key, sessionID, ttl).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error acquiring session slot %s: %v", key, err))
		return false, err
	}

	return ok, nil
}

func (r *redisClient) RefreshSession(ctx context.Context, interviewID, candidateEmail string, ttl time.Duration) error {
	key := sessionKey(interviewID, candidateEmail)

	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error refreshing session slot %s: %v", key, err))
		return err
	}

	return nil
}

// ReleaseSession only deletes the slot when it is still owned by sessionID,
// so a stale instance cannot release a newer session's slot.
func (r *redisClient) ReleaseSession(ctx context.Context, interviewID, candidateEmail, sessionID string) error {
	key := sessionKey(interviewID, candidateEmail)

	owner, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	} else if err != nil {
		return err
	}

	if owner != sessionID {
		return nil
	}

	return r.client.Del(ctx, key).Err()
}

func (r *redisClient) ActiveSession(ctx context.Context, interviewID, candidateEmail string) (string, error) {
	val, err := r.client.Get(ctx, sessionKey(interviewID, candidateEmail)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return val, nil
}
