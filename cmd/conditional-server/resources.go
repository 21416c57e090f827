package main

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/always-cache/conditional/rfc7232"

	"github.com/go-chi/chi/v5"
)

// resourceServer is a minimal keyed-resource API used to demonstrate the
// middleware. Every stored resource carries a version counter and a
// modification time, from which its validators are derived.
type resourceServer struct {
	mutex     sync.RWMutex
	resources map[string]*resource
}

type resource struct {
	body        []byte
	contentType string
	version     int
	modified    time.Time
}

func newResourceServer() *resourceServer {
	return &resourceServer{resources: make(map[string]*resource)}
}

func (s *resourceServer) get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mutex.RLock()
	res, ok := s.resources[name]
	s.mutex.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("ETag", etagFor(name, res.version).String())
	w.Header().Set("Last-Modified", res.modified.UTC().Format(http.TimeFormat))
	if res.contentType != "" {
		w.Header().Set("Content-Type", res.contentType)
	}
	w.Write(res.body)
}

func (s *resourceServer) put(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Could not read body", http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	res, exists := s.resources[name]
	if !exists {
		res = &resource{}
		s.resources[name] = res
	}
	res.body = body
	res.contentType = r.Header.Get("Content-Type")
	res.version++
	res.modified = time.Now()
	version := res.version
	s.mutex.Unlock()

	w.Header().Set("ETag", etagFor(name, version).String())
	if exists {
		w.WriteHeader(http.StatusNoContent)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *resourceServer) delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mutex.Lock()
	_, ok := s.resources[name]
	delete(s.resources, name)
	s.mutex.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func etagFor(name string, version int) rfc7232.EntityTag {
	return rfc7232.StrongTag(fmt.Sprintf("%s.%d", name, version))
}
