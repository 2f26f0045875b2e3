// Package subject adapts database backends to the analysis Subject contract.
package subject

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"algorithm-analysis/internal/analysis"
	"algorithm-analysis/internal/database"
)

// VerificationError reports an element whose stored value does not match
// anything the analysis wrote.
type VerificationError struct {
	Op     string
	Index  uint
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Op, e.Index, e.Reason)
}

// ErrorID implements splitrun.Identifier.
func (e *VerificationError) ErrorID() string { return "VERIFICATION_FAILED" }

// KVSubject drives a database.KV as an analysis.Subject. Element i is stored
// under key i with a value derived from i, so every read can be verified.
type KVSubject struct {
	ctx       context.Context
	kv        database.KV
	namespace uuid.UUID
}

var _ analysis.Subject = (*KVSubject)(nil)

// NewKVSubject creates a subject over kv. ctx bounds every backend call.
func NewKVSubject(ctx context.Context, kv database.KV) *KVSubject {
	return &KVSubject{
		ctx:       ctx,
		kv:        kv,
		namespace: uuid.New(),
	}
}

// InsertValue is the value Insert writes for element i.
func (s *KVSubject) InsertValue(i uint) string {
	return uuid.NewSHA1(s.namespace, []byte(fmt.Sprintf("insert/%d", i))).String()
}

// UpdateValue is the value Update writes for element i.
func (s *KVSubject) UpdateValue(i uint) string {
	return uuid.NewSHA1(s.namespace, []byte(fmt.Sprintf("update/%d", i))).String()
}

func (s *KVSubject) Reset(occasion analysis.ResetOccasion) error {
	return errors.Wrapf(s.kv.Reset(s.ctx), "reset on %s", occasion)
}

func (s *KVSubject) Insert(i uint) error {
	return s.kv.Insert(s.ctx, int64(i), s.InsertValue(i))
}

func (s *KVSubject) Select(i uint) error {
	return s.verify("select", i)
}

func (s *KVSubject) Update(i uint) error {
	if err := s.verify("update", i); err != nil {
		return err
	}
	return s.kv.Update(s.ctx, int64(i), s.UpdateValue(i))
}

func (s *KVSubject) Delete(i uint) error {
	if err := s.verify("delete", i); err != nil {
		return err
	}
	return s.kv.Delete(s.ctx, int64(i))
}

// verify checks that element i holds its insert or update value.
func (s *KVSubject) verify(op string, i uint) error {
	value, err := s.kv.Select(s.ctx, int64(i))
	if errors.Is(err, database.ErrNotFound) {
		return &VerificationError{Op: op, Index: i, Reason: "element not inserted"}
	}
	if err != nil {
		return err
	}
	if value != s.InsertValue(i) && value != s.UpdateValue(i) {
		return &VerificationError{Op: op, Index: i, Reason: fmt.Sprintf("unexpected value %q", value)}
	}
	return nil
}
