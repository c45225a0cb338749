package db

import (
	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Tidy removes news items that have already been read from the database.
// Unread items and the learned vocabulary are never touched. Can be run as a
// cron job to keep the database size down.
func Tidy(database string) (int64, error) {
	store, err := New(database)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.tidy()
}

func (s *Store) tidy() (int64, error) {
	deleteNews := sb.SQLite.NewDeleteBuilder()
	query, args := deleteNews.DeleteFrom("news").Where(deleteNews.Equal("is_read", 1)).Build()

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}

	deleted, _ := res.RowsAffected()
	log.WithFields(log.Fields{
		"deleted": deleted,
	}).Info("Tidied database")

	return deleted, nil
}
