package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const recordNumberDigits = 7

func recordDatePrefix(t time.Time) string {
	return t.UTC().Format("20060102")
}

func formatRecordNumber(datePrefix string, sequence int) string {
	return fmt.Sprintf("%s-%0*d", datePrefix, recordNumberDigits, sequence)
}

// nextSequence parses the suffix of the latest record number for a day.
func nextSequence(datePrefix, latest string) (int, error) {
	suffix := strings.TrimPrefix(latest, datePrefix+"-")
	if suffix == latest {
		return 0, fmt.Errorf("record number %q outside prefix %s", latest, datePrefix)
	}
	sequence, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("parse record number %q: %w", latest, err)
	}
	return sequence + 1, nil
}

// nextRecordNumber reads the latest number issued on now's UTC date and
// returns the one after it. Two concurrent callers may get the same answer;
// the store's unique constraint decides between them.
func (s *Service) nextRecordNumber(ctx context.Context, now time.Time) (string, error) {
	datePrefix := recordDatePrefix(now)
	latest, found, err := s.store.LatestRecordNumber(ctx, datePrefix)
	if err != nil {
		return "", fmt.Errorf("latest record number: %w", err)
	}
	if !found {
		return formatRecordNumber(datePrefix, 1), nil
	}
	sequence, err := nextSequence(datePrefix, latest)
	if err != nil {
		return "", err
	}
	return formatRecordNumber(datePrefix, sequence), nil
}
