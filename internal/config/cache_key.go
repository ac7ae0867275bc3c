package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SyncLeaseKey returns the lock key guarding a queue fold run.
func (r *CacheKeyStruct) SyncLeaseKey() string {
	return "sync:lease"
}

// RebuildLeaseKey returns the lock key guarding a full rebuild run.
func (r *CacheKeyStruct) RebuildLeaseKey() string {
	return "rebuild:lease"
}

// SyncEventChannel returns the Redis PubSub channel for sync run reports.
func (r *CacheKeyStruct) SyncEventChannel() string {
	return "sync:events"
}

// GroupProgressKey returns the cache key for a group's computed progress.
func (r *CacheKeyStruct) GroupProgressKey(groupName string) string {
	return fmt.Sprintf("group:%s:progress", groupName)
}

// StudentProgressKey returns the cache key for a student's computed progress.
func (r *CacheKeyStruct) StudentProgressKey(studentID string) string {
	return fmt.Sprintf("student:%s:progress", studentID)
}

// QueueStatsKey returns the cache key for the sync queue depth snapshot.
func (r *CacheKeyStruct) QueueStatsKey() string {
	return "sync:queue_stats"
}

var CacheKey = NewCacheKeyStruct()
