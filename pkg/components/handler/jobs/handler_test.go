/*
 * Copyright 2026 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
)

func newTestJob(ctx context.Context, tFunc func(context.Context, context.CancelFunc) error) *job {
	jCtx, cf := context.WithCancel(ctx)
	return &job{
		meta:  models_job.Job{ID: "test", Created: time.Now()},
		tFunc: tFunc,
		ctx:   jCtx,
		cFunc: cf,
	}
}

func TestJob_CallTarget(t *testing.T) {
	var finished []models_job.Job
	j := newTestJob(context.Background(), func(context.Context, context.CancelFunc) error {
		return models_error.NewPartialFailureError("foo.mpy", "/media/CIRCUITPY", errors.New("disk full"))
	})
	j.done = func(m models_job.Job) {
		finished = append(finished, m)
	}
	called := false
	j.CallTarget(func() {
		called = true
	})
	if !called {
		t.Error("callback not called")
	}
	m := j.Meta()
	if m.Started == nil || m.Completed == nil {
		t.Errorf("unexpected timestamps %+v", m)
	}
	if m.Error == nil || m.Error.Kind != models_error.KindPartialFailure {
		t.Errorf("unexpected error %+v", m.Error)
	}
	if len(finished) != 1 || finished[0].ID != "test" {
		t.Errorf("unexpected finished records %v", finished)
	}
	t.Run("claimed", func(t *testing.T) {
		calls := 0
		j := newTestJob(context.Background(), func(context.Context, context.CancelFunc) error {
			calls++
			return nil
		})
		j.CallTarget(func() {})
		j.CallTarget(func() {})
		j.Cancel()
		if calls != 1 {
			t.Errorf("expected one call, got %d", calls)
		}
	})
}

func TestHandler_CancelPending(t *testing.T) {
	ccHandler := ccjh.New(10)
	h := New(context.Background(), ccHandler)
	var finished []models_job.Job
	h.Finished().Subscribe(func(m models_job.Job) {
		finished = append(finished, m)
	})
	var calls int
	var ctxErr error
	held := true
	id, err := h.Create("test", func(ctx context.Context, cf context.CancelFunc) error {
		defer func() {
			held = false
		}()
		defer cf()
		calls++
		if err := ctx.Err(); err != nil {
			ctxErr = err
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = h.Cancel(id); err != nil {
		t.Fatal(err)
	}
	if held {
		t.Error("target did not release")
	}
	if !errors.Is(ctxErr, context.Canceled) {
		t.Errorf("expected canceled context, got %v", ctxErr)
	}
	m, err := h.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if m.Started != nil || m.Canceled == nil || m.Completed == nil {
		t.Errorf("unexpected timestamps %+v", m)
	}
	if m.Error == nil || m.Error.Kind != models_error.KindCanceled {
		t.Errorf("unexpected error %+v", m.Error)
	}
	if len(finished) != 1 || finished[0].ID != id {
		t.Errorf("unexpected finished records %v", finished)
	}
	if err = h.Cancel(id); models_error.Kind(err) != models_error.KindInvalidInput {
		t.Errorf("expected invalid input error, got %v", err)
	}
	if err = ccHandler.RunAsync(1, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	defer ccHandler.Stop()
	time.Sleep(100 * time.Millisecond)
	if calls != 1 {
		t.Errorf("expected one call, got %d", calls)
	}
	if m, _ = h.Get(id); m.Started != nil {
		t.Errorf("canceled job was started %+v", m)
	}
	if len(finished) != 1 {
		t.Errorf("expected one finished record, got %d", len(finished))
	}
}

func TestHandler_List(t *testing.T) {
	h := New(context.Background(), nil)
	now := time.Now()
	t1, t2, t3 := now.Add(-3*time.Hour), now.Add(-2*time.Hour), now.Add(-time.Hour)
	h.jobs = map[string]*job{
		"pending":  {meta: models_job.Job{ID: "pending", Created: t3}},
		"running":  {meta: models_job.Job{ID: "running", Created: t2, Started: &t2}},
		"ok":       {meta: models_job.Job{ID: "ok", Created: t1, Started: &t1, Completed: &t2}},
		"error":    {meta: models_job.Job{ID: "error", Created: t1.Add(time.Minute), Started: &t1, Completed: &t2, Error: &models_job.Error{Kind: models_error.KindIOFailure}}},
		"canceled": {meta: models_job.Job{ID: "canceled", Created: t2.Add(time.Minute), Canceled: &t3}},
	}
	cases := map[models_job.Status][]string{
		models_job.Pending:   {"pending"},
		models_job.Running:   {"running"},
		models_job.OK:        {"ok"},
		models_job.Failed:    {"error"},
		models_job.Canceled:  {"canceled"},
		models_job.Completed: {"ok", "error"},
		"":                   {"ok", "error", "running", "canceled", "pending"},
	}
	for status, expected := range cases {
		l := h.List(models_job.Filter{Status: status})
		var ids []string
		for _, j := range l {
			ids = append(ids, j.ID)
		}
		if len(ids) != len(expected) {
			t.Errorf("%s: expected %v got %v", status, expected, ids)
			continue
		}
		for i := range ids {
			if ids[i] != expected[i] {
				t.Errorf("%s: expected %v got %v", status, expected, ids)
				break
			}
		}
	}
	l := h.List(models_job.Filter{SortDesc: true, Since: t2})
	if len(l) != 2 || l[0].ID != "pending" || l[1].ID != "canceled" {
		t.Errorf("unexpected jobs %v", l)
	}
}

func TestHandler_PurgeJobs(t *testing.T) {
	h := New(context.Background(), nil)
	old := time.Now().Add(-time.Hour)
	ctx, cf := context.WithCancel(context.Background())
	defer cf()
	h.jobs = map[string]*job{
		"old-done":    {meta: models_job.Job{ID: "old-done", Created: old, Completed: &old}, ctx: ctx},
		"old-running": {meta: models_job.Job{ID: "old-running", Created: old, Started: &old}, ctx: ctx},
		"new-done":    {meta: models_job.Job{ID: "new-done", Created: time.Now(), Completed: &old}, ctx: ctx},
	}
	if n := h.PurgeJobs(30 * time.Minute); n != 1 {
		t.Errorf("expected 1 got %d", n)
	}
	if _, err := h.Get("old-done"); !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected %v got %v", models_error.NotFoundErr, err)
	}
	if _, err := h.Get("old-running"); err != nil {
		t.Error(err)
	}
}

func TestHandler_Create(t *testing.T) {
	ccHandler := ccjh.New(10)
	if err := ccHandler.RunAsync(2, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	defer ccHandler.Stop()
	h := New(context.Background(), ccHandler)
	done := make(chan models_job.Job, 1)
	unsub := h.Finished().Subscribe(func(j models_job.Job) {
		done <- j
	})
	defer unsub()
	id, err := h.Create("test job", func(ctx context.Context, cf context.CancelFunc) error {
		defer cf()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	select {
	case j := <-done:
		if j.ID != id || j.Error != nil || j.Description != "test job" {
			t.Errorf("unexpected job %+v", j)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	j, err := h.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if j.Completed == nil {
		t.Error("job not completed")
	}
	if err = h.Cancel(id); err == nil {
		t.Error("expected error canceling completed job")
	}
	if err = h.Cancel("unknown"); !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected %v got %v", models_error.NotFoundErr, err)
	}
}
