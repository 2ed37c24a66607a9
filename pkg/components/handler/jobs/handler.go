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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/events"
	helper_time "github.com/SENERGY-Platform/bundle-manager/pkg/components/helper/time"
	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	"github.com/google/uuid"
)

type Handler struct {
	mu        sync.RWMutex
	ctx       context.Context
	ccHandler *ccjh.Handler
	jobs      map[string]*job
	finished  *events.Bus[models_job.Job]
}

func New(ctx context.Context, ccHandler *ccjh.Handler) *Handler {
	return &Handler{
		ctx:       ctx,
		ccHandler: ccHandler,
		jobs:      make(map[string]*job),
		finished:  events.NewBus[models_job.Job](),
	}
}

// Finished publishes the record of every job once its target returned.
func (h *Handler) Finished() *events.Bus[models_job.Job] {
	return h.finished
}

func (h *Handler) Create(desc string, tFunc func(context.Context, context.CancelFunc) error) (string, error) {
	uid, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	id := uid.String()
	ctx, cf := context.WithCancel(h.ctx)
	j := &job{
		meta: models_job.Job{
			ID:          id,
			Created:     helper_time.Now(),
			Description: desc,
		},
		tFunc: tFunc,
		ctx:   ctx,
		cFunc: cf,
		done:  h.finished.Publish,
	}
	j.ctx = context.WithValue(ctx, progressCtxKey{}, j)
	h.mu.Lock()
	defer h.mu.Unlock()
	err = h.ccHandler.Add(j)
	if err != nil {
		cf()
		return "", err
	}
	h.jobs[id] = j
	return id, nil
}

func (h *Handler) Get(id string) (models_job.Job, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	j, ok := h.jobs[id]
	if !ok {
		return models_job.Job{}, models_error.NewNotFoundError("job", id, "")
	}
	return j.Meta(), nil
}

func (h *Handler) Cancel(id string) error {
	h.mu.RLock()
	j, ok := h.jobs[id]
	h.mu.RUnlock()
	if !ok {
		return models_error.NewNotFoundError("job", id, "")
	}
	if m := j.Meta(); m.Completed != nil {
		return models_error.NewInvalidInputError(fmt.Errorf("job '%s' already completed", id))
	}
	j.Cancel()
	return nil
}

func (h *Handler) List(filter models_job.Filter) []models_job.Job {
	jobs := []models_job.Job{}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, v := range h.jobs {
		if check(filter, v.Meta()) {
			jobs = append(jobs, v.Meta())
		}
	}
	if filter.SortDesc {
		sort.Slice(jobs, func(i, j int) bool {
			return jobs[i].Created.After(jobs[j].Created)
		})
	} else {
		sort.Slice(jobs, func(i, j int) bool {
			return jobs[i].Created.Before(jobs[j].Created)
		})
	}
	return jobs
}

// PurgeJobs removes finished or canceled jobs older than maxAge and returns their number.
func (h *Handler) PurgeJobs(maxAge time.Duration) int {
	var l []string
	tNow := helper_time.Now()
	h.mu.RLock()
	for k, v := range h.jobs {
		m := v.Meta()
		if v.IsCanceled() || m.Completed != nil || m.Canceled != nil {
			if tNow.Sub(m.Created) >= maxAge {
				l = append(l, k)
			}
		}
	}
	h.mu.RUnlock()
	h.mu.Lock()
	for _, id := range l {
		delete(h.jobs, id)
	}
	h.mu.Unlock()
	return len(l)
}

func check(filter models_job.Filter, job models_job.Job) bool {
	if !filter.Since.IsZero() && !job.Created.After(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && !job.Created.Before(filter.Until) {
		return false
	}
	switch filter.Status {
	case models_job.Pending:
		if job.Started != nil || job.Canceled != nil || job.Completed != nil {
			return false
		}
	case models_job.Running:
		if job.Started == nil || job.Canceled != nil || job.Completed != nil {
			return false
		}
	case models_job.Canceled:
		if job.Canceled == nil {
			return false
		}
	case models_job.Completed:
		if job.Completed == nil {
			return false
		}
	case models_job.Failed:
		if job.Completed == nil || job.Error == nil {
			return false
		}
	case models_job.OK:
		if job.Completed == nil || job.Error != nil {
			return false
		}
	}
	return true
}
