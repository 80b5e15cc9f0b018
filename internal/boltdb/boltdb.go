// Package boltdb is a single-file cookie store backend for deployments that
// do not want a SQL database.
package boltdb

import (
	"encoding/json"
	"net/http"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/maxugly/cobalt/internal/cookie"
)

var Buckets = struct {
	Metadata []byte
	Cookies  []byte
}{
	Metadata: []byte("__metadata__"),
	Cookies:  []byte("cookies"),
}

var MetadataKeys = struct {
	Version []byte
}{
	Version: []byte("version"),
}

const currentVersion = 1

// cookieRecord is the stored form of one platform session.
type cookieRecord struct {
	Cookies  string `json:"cookies"`
	WWWClaim string `json:"www_claim"`
}

// CookieStore implements cookie.Store on a bbolt database. Like the SQL
// store, Get hands out one shared *cookie.Session per platform.
type CookieStore struct {
	db *bbolt.DB

	mu        sync.Mutex
	sessions  map[string]*cookie.Session
	lastClaim map[string]string
}

func New(path string) (*CookieStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		metadata, err := tx.CreateBucketIfNotExists(Buckets.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(Buckets.Cookies); err != nil {
			return err
		}

		var version int
		if versionBytes := metadata.Get(MetadataKeys.Version); versionBytes != nil {
			if err := json.Unmarshal(versionBytes, &version); err != nil {
				return err
			}
		}

		versionBytes, err := json.Marshal(currentVersion)
		if err != nil {
			return err
		}
		return metadata.Put(MetadataKeys.Version, versionBytes)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &CookieStore{
		db:        db,
		sessions:  make(map[string]*cookie.Session),
		lastClaim: make(map[string]string),
	}, nil
}

func (s *CookieStore) Close() error {
	return s.db.Close()
}

func (s *CookieStore) Get(platform string) *cookie.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[platform]; ok {
		return sess
	}

	var record *cookieRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(Buckets.Cookies).Get([]byte(platform))
		if data == nil {
			return nil
		}
		record = &cookieRecord{}
		return json.Unmarshal(data, record)
	})
	if err != nil || record == nil {
		return nil
	}
	sess := cookie.ParseSession(platform, record.Cookies)
	sess.SetWWWClaim(record.WWWClaim)
	s.sessions[platform] = sess
	s.lastClaim[platform] = record.WWWClaim
	return sess
}

// Put stores a session, replacing any existing record for its platform.
func (s *CookieStore) Put(sess *cookie.Session) error {
	if sess == nil {
		return nil
	}
	s.mu.Lock()
	s.sessions[sess.Platform] = sess
	s.lastClaim[sess.Platform] = sess.WWWClaim()
	s.mu.Unlock()
	return s.save(sess)
}

// Delete removes a platform's stored session.
func (s *CookieStore) Delete(platform string) error {
	s.mu.Lock()
	delete(s.sessions, platform)
	delete(s.lastClaim, platform)
	s.mu.Unlock()
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(Buckets.Cookies).Delete([]byte(platform))
	})
}

func (s *CookieStore) Update(sess *cookie.Session, headers http.Header) {
	if sess == nil {
		return
	}
	changed := cookie.ApplyHeaders(sess, headers)

	s.mu.Lock()
	claim := sess.WWWClaim()
	claimChanged := claim != s.lastClaim[sess.Platform]
	if claimChanged {
		s.lastClaim[sess.Platform] = claim
	}
	s.mu.Unlock()

	if changed || claimChanged {
		_ = s.save(sess)
	}
}

func (s *CookieStore) save(sess *cookie.Session) error {
	data, err := json.Marshal(cookieRecord{
		Cookies:  sess.CookieHeader(),
		WWWClaim: sess.WWWClaim(),
	})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(Buckets.Cookies).Put([]byte(sess.Platform), data)
	})
}
