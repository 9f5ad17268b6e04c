package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fintrack/internal/log"
)

// BackupPath is the sibling file Backup writes to and Restore reads from.
func (r *SQLiteRepository) BackupPath() string {
	return r.path + r.backupSuffix
}

// Backup implements ports.Archiver
func (r *SQLiteRepository) Backup(ctx context.Context) (string, error) {
	dst := r.BackupPath()
	if err := CopyFile(r.path, dst); err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}

	logger(ctx).InfoContext(ctx, "Database backup created",
		log.FieldOperation, log.OpBackup, log.FieldPath, r.path, "backup", dst)
	return dst, nil
}

// Restore implements ports.Archiver. The pool is closed for the copy and
// reopened afterwards, even when the copy fails.
func (r *SQLiteRepository) Restore(ctx context.Context) error {
	src := r.BackupPath()
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("restore database: %w", err)
	}

	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close database before restore: %w", err)
	}

	copyErr := CopyFile(src, r.path)

	db, openErr := openDB(r.path)
	if openErr == nil {
		r.db = db
	}
	if err := errors.Join(copyErr, openErr); err != nil {
		return fmt.Errorf("restore database: %w", err)
	}

	logger(ctx).InfoContext(ctx, "Database restored from backup",
		log.FieldOperation, log.OpRestore, log.FieldPath, r.path, "backup", src)
	return nil
}

// CopyFile copies src over dst byte for byte. dst is replaced atomically
// through a temporary file in the same directory.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}

	return os.Rename(tmpName, dst)
}
