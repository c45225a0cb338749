package db

import (
	"database/sql"
	"fmt"
	"strings"

	"readnext/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Store handles all database operations with a shared connection.
// Writes must come from a single goroutine (SQLite single-writer discipline),
// see the update coordinator for how fetch results are funneled through one
// ingestion consumer.
type Store struct {
	db *sql.DB
}

func New(database string) (*Store, error) {
	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Folder operations

func (s *Store) AddFolder(title string) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("folder title must not be empty")
	}

	log.WithFields(log.Fields{
		"title": title,
	}).Info("Adding folder")

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := ib.InsertInto("folder").Cols("title").Values(title).Build()

	res, err := s.db.Exec(sql, args...)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("folder %q: %w", title, ErrDuplicateTitle)
	}
	if err != nil {
		return 0, fmt.Errorf("insert error: %w", err)
	}

	return res.LastInsertId()
}

// RemoveFolder deletes an empty folder. Folders that still hold channels
// cannot be removed.
func (s *Store) RemoveFolder(title string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var channels int64
	err = tx.QueryRow(
		"SELECT COUNT(id) FROM channel WHERE folder_id = (SELECT id FROM folder WHERE title = ?)",
		title,
	).Scan(&channels)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}
	if channels > 0 {
		return fmt.Errorf("folder %q has %d channels: %w", title, channels, ErrFolderNotEmpty)
	}

	res, err := tx.Exec("DELETE FROM folder WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("folder %q: %w", title, ErrNotFound)
	}

	log.WithFields(log.Fields{
		"title": title,
	}).Info("Removed folder")

	return tx.Commit()
}

func (s *Store) SetFolderExpanded(title string, expanded bool) error {
	_, err := s.db.Exec("UPDATE folder SET expanded = ? WHERE title = ?", expanded, title)
	return err
}

// Folders lists all folders with their aggregated unread counts.
func (s *Store) Folders() ([]models.Folder, error) {
	rows, err := s.db.Query(`
		SELECT folder.id, folder.title, folder.expanded,
			COALESCE((
				SELECT COUNT(news.id) FROM news
				JOIN channel ON channel.id = news.channel_id
				WHERE channel.folder_id = folder.id AND news.is_read = 0
			), 0) AS unread
		FROM folder
		ORDER BY folder.title`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(&folder.Id, &folder.Title, &folder.Expanded, &folder.Unread); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		folders = append(folders, folder)
	}

	return folders, rows.Err()
}

// Channel operations

// AddChannel creates a channel. The URL is stored as-is, reachability is the
// fetchers' problem. An empty folder title leaves the channel unfiled.
func (s *Store) AddChannel(title, url string, kind models.ChannelKind, folderTitle string) (int64, error) {
	log.WithFields(log.Fields{
		"title":  title,
		"url":    url,
		"kind":   kind,
		"folder": folderTitle,
	}).Info("Adding channel")

	var folderID interface{}
	if folderTitle != "" {
		var id int64
		err := s.db.QueryRow("SELECT id FROM folder WHERE title = ?", folderTitle).Scan(&id)
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("folder %q: %w", folderTitle, ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("query error: %w", err)
		}
		folderID = id
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	sql, args := ib.InsertInto("channel").
		Cols("title", "url", "channel_kind", "folder_id").
		Values(title, url, string(kind), folderID).
		Build()

	res, err := s.db.Exec(sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert error: %w", err)
	}

	return res.LastInsertId()
}

// MoveChannel reparents a channel in a single update. Moving a channel to the
// folder it is already in is a no-op.
func (s *Store) MoveChannel(channelTitle, folderTitle string) error {
	var folderID int64
	err := s.db.QueryRow("SELECT id FROM folder WHERE title = ?", folderTitle).Scan(&folderID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("folder %q: %w", folderTitle, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}

	res, err := s.db.Exec("UPDATE channel SET folder_id = ? WHERE title = ?", folderID, channelTitle)
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("channel %q: %w", channelTitle, ErrNotFound)
	}

	log.WithFields(log.Fields{
		"channel": channelTitle,
		"folder":  folderTitle,
	}).Info("Moved channel")

	return nil
}

// RemoveChannel deletes a channel and cascades over its news items.
func (s *Store) RemoveChannel(title string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM news WHERE channel_id = (SELECT id FROM channel WHERE title = ?)", title,
	); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}

	res, err := tx.Exec("DELETE FROM channel WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("channel %q: %w", title, ErrNotFound)
	}

	log.WithFields(log.Fields{
		"title": title,
	}).Info("Removed channel")

	return tx.Commit()
}

// Channels lists all channels with their unread counts and folder titles.
func (s *Store) Channels() ([]models.Channel, error) {
	rows, err := s.db.Query(`
		SELECT channel.id, channel.title, channel.url, channel.channel_kind, channel.folder_id,
			COALESCE(folder.title, '') AS folder_title,
			(SELECT COUNT(id) FROM news WHERE channel_id = channel.id AND is_read = 0) AS unread
		FROM channel
		LEFT JOIN folder ON folder.id = channel.folder_id
		ORDER BY channel.title`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var channel models.Channel
		var kind string
		if err := rows.Scan(
			&channel.Id, &channel.Title, &channel.Url, &kind,
			&channel.FolderId, &channel.FolderTitle, &channel.Unread,
		); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		channel.Kind = models.ChannelKind(kind)
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}
