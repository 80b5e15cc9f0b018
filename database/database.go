// Package database persists platform cookie sessions in a SQLite database so
// authenticated resolutions survive process restarts.
package database

import (
	"embed"
	"errors"
	"net/http"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"moul.io/zapgorm2"

	"github.com/maxugly/cobalt/internal/cookie"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Cookie is one platform's persisted session row.
type Cookie struct {
	Platform string `gorm:"primaryKey"`
	Cookies  string
	WWWClaim string `gorm:"column:www_claim"`
}

func (Cookie) TableName() string { return "cookie" }

// CookieStore implements cookie.Store on top of SQLite. Sessions are handed
// out as shared handles: repeated Get calls for a platform return the same
// *cookie.Session, so claim write-backs are visible to all callers.
type CookieStore struct {
	db  *gorm.DB
	log *zap.SugaredLogger

	mu        sync.Mutex
	sessions  map[string]*cookie.Session
	lastClaim map[string]string
}

func NewCookieStore(path string, logger *zap.Logger) (*CookieStore, error) {
	gormLogger := zapgorm2.New(logger)
	gormLogger.SetAsDefault()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	return &CookieStore{
		db:        db,
		log:       logger.Sugar().Named("cookiestore"),
		sessions:  make(map[string]*cookie.Session),
		lastClaim: make(map[string]string),
	}, nil
}

// Migrate brings the database schema up to the current version.
func (s *CookieStore) Migrate() error {
	source, err := iofs.New(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}
	switch err = m.Up(); err {
	case nil:
		s.log.Info("database migration complete")
	case migrate.ErrNoChange:
		s.log.Debug("no database migration required")
	default:
		return err
	}
	return nil
}

func (s *CookieStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the session handle for a platform, loading it from the database
// on first use. Platforms with no stored row get nil.
func (s *CookieStore) Get(platform string) *cookie.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[platform]; ok {
		return sess
	}

	var row Cookie
	if err := s.db.First(&row, "platform = ?", platform).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warnw("cookie lookup failed", "platform", platform, "error", err)
		}
		return nil
	}
	sess := cookie.ParseSession(row.Platform, row.Cookies)
	sess.SetWWWClaim(row.WWWClaim)
	s.sessions[platform] = sess
	s.lastClaim[platform] = row.WWWClaim
	return sess
}

// Put stores a session, replacing any existing row for its platform.
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

// Update ingests response headers into the session and persists the row when
// either the cookie values or the claim actually changed.
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

	if !changed && !claimChanged {
		return
	}
	if err := s.save(sess); err != nil {
		s.log.Warnw("cookie persist failed", "platform", sess.Platform, "error", err)
	}
}

func (s *CookieStore) save(sess *cookie.Session) error {
	row := Cookie{
		Platform: sess.Platform,
		Cookies:  sess.CookieHeader(),
		WWWClaim: sess.WWWClaim(),
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}
