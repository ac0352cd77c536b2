package config

import (
	"fmt"
	"strconv"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding the active token ID of a user.
func (r *CacheKeyStruct) UserSessionKey(userID int64) string {
	return fmt.Sprintf("login:%d", userID)
}

// LiveCheatingLogKey returns the cache key of a learner's in-progress cheating log.
func (r *CacheKeyStruct) LiveCheatingLogKey(examID string, studentID int64) string {
	return fmt.Sprintf("proctor:exam:%s:student:%d:log", examID, studentID)
}

// LiveCheatingLogPattern matches every live cheating log key, for SCAN.
func (r *CacheKeyStruct) LiveCheatingLogPattern() string {
	return "proctor:exam:*:student:*:log"
}

// ParseLiveCheatingLogKey extracts the exam ID and student ID from a live log key.
func (r *CacheKeyStruct) ParseLiveCheatingLogKey(key string) (examID string, studentID int64, ok bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 6 || parts[0] != "proctor" || parts[1] != "exam" || parts[3] != "student" || parts[5] != "log" {
		return "", 0, false
	}
	id, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return parts[2], id, true
}

var CacheKey = NewCacheKeyStruct()
