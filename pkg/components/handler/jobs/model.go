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
	"sync"

	helper_time "github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/time"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
)

type job struct {
	mu      sync.RWMutex
	meta    models_job.Job
	tFunc   func(context.Context, context.CancelFunc) error
	ctx     context.Context
	cFunc   context.CancelFunc
	done    func(models_job.Job)
	claimed bool
}

// claim reports whether the caller is the first to take over the job target.
func (j *job) claim() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.claimed {
		return false
	}
	j.claimed = true
	return true
}

func (j *job) CallTarget(cbk func()) {
	defer cbk()
	if !j.claim() {
		return
	}
	j.mu.Lock()
	t := helper_time.Now()
	j.meta.Started = &t
	j.mu.Unlock()
	j.finish(j.tFunc(j.ctx, j.cFunc))
}

func (j *job) finish(err error) {
	j.mu.Lock()
	if err != nil {
		j.meta.Error = newError(err)
	}
	t := helper_time.Now()
	j.meta.Completed = &t
	j.mu.Unlock()
	if j.done != nil {
		j.done(j.Meta())
	}
}

func (j *job) IsCanceled() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.ctx.Err() == context.Canceled
}

// Cancel cancels the job context. A job that was not dispatched yet is finished right away:
// its target is called with the done context so it releases what it holds.
func (j *job) Cancel() {
	j.cFunc()
	j.mu.Lock()
	t := helper_time.Now()
	j.meta.Canceled = &t
	j.mu.Unlock()
	if !j.claim() {
		return
	}
	err := j.tFunc(j.ctx, j.cFunc)
	if err == nil {
		err = context.Canceled
	}
	j.finish(err)
}

func (j *job) Meta() models_job.Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	meta := j.meta
	if j.meta.Progress != nil {
		p := *j.meta.Progress
		meta.Progress = &p
	}
	return meta
}

func (j *job) setProgress(done, total int64, status string) {
	j.mu.Lock()
	j.meta.Progress = &models_job.Progress{Done: done, Total: total, Status: status}
	j.mu.Unlock()
}

type progressCtxKey struct{}

// ReportProgress updates the progress record of the job running with ctx. Outside of a job it does nothing.
func ReportProgress(ctx context.Context, done, total int64, status string) {
	if j, ok := ctx.Value(progressCtxKey{}).(*job); ok {
		j.setProgress(done, total, status)
	}
}

func newError(err error) *models_job.Error {
	kind := models_error.Kind(err)
	if kind == models_error.KindUnknown && errors.Is(err, context.Canceled) {
		kind = models_error.KindCanceled
	}
	return &models_job.Error{
		Kind:    kind,
		Message: err.Error(),
	}
}
