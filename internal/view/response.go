// Package view renders the query form and the response panel.
package view

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind tags the shape a response payload was recognised as.
type Kind string

const (
	KindAnswer       Kind = "answer"
	KindError        Kind = "error"
	KindText         Kind = "text"
	KindUnrecognized Kind = "unrecognized"
)

// Source is one contributing answer listed under a response.
type Source struct {
	Name string
	Text string
}

// Response is a payload narrowed for display. Raw always holds the
// pretty-printed payload so any kind can fall back to it.
type Response struct {
	Kind       Kind
	Answer     string
	Confidence *float64
	Sources    []Source
	Message    string
	Raw        string
}

// HasConfidence is for templates, which cannot test a nil pointer cleanly.
func (r Response) HasConfidence() bool {
	return r.Confidence != nil
}

// ConfidencePercent renders the confidence as a whole percentage.
func (r Response) ConfidencePercent() int {
	if r.Confidence == nil {
		return 0
	}
	c := *r.Confidence
	if c <= 1 {
		c *= 100
	}
	return int(c + 0.5)
}

// NarrowResponse classifies a payload. It never fails: anything that is not
// one of the known shapes is KindUnrecognized.
func NarrowResponse(payload json.RawMessage) Response {
	raw := strings.TrimSpace(string(payload))
	resp := Response{Kind: KindUnrecognized, Raw: prettyJSON(raw)}

	if raw == "" || !gjson.Valid(raw) {
		return resp
	}

	root := gjson.Parse(raw)

	switch {
	case root.Type == gjson.String:
		resp.Kind = KindText
		resp.Answer = root.String()

	case root.IsObject() && root.Get("response").Type == gjson.String:
		resp.Kind = KindAnswer
		resp.Answer = root.Get("response").String()
		if c := root.Get("confidence"); c.Type == gjson.Number {
			v := c.Float()
			resp.Confidence = &v
		}
		resp.Sources = narrowSources(root.Get("sources"))

	case root.IsObject() && root.Get("detail").Type == gjson.String:
		resp.Kind = KindError
		resp.Message = root.Get("detail").String()

	case root.IsObject() && root.Get("error").Type == gjson.String:
		resp.Kind = KindError
		resp.Message = root.Get("error").String()
	}

	return resp
}

// narrowSources accepts either a list of sources or a map of source name to
// that source's own answer.
func narrowSources(v gjson.Result) []Source {
	var sources []Source

	switch {
	case v.IsArray():
		for i, item := range v.Array() {
			sources = append(sources, sourceFrom(item, "", i))
		}
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			sources = append(sources, sourceFrom(value, key.String(), 0))
			return true
		})
		sort.SliceStable(sources, func(i, j int) bool {
			return sources[i].Name < sources[j].Name
		})
	}

	return sources
}

func sourceFrom(item gjson.Result, name string, index int) Source {
	src := Source{Name: name}

	switch {
	case item.Type == gjson.String:
		src.Text = item.String()
	case item.IsObject():
		for _, key := range []string{"title", "name", "source"} {
			if v := item.Get(key); v.Type == gjson.String && src.Name == "" {
				src.Name = v.String()
			}
		}
		for _, key := range []string{"response", "text", "content"} {
			if v := item.Get(key); v.Type == gjson.String {
				src.Text = v.String()
				break
			}
		}
		if src.Text == "" {
			src.Text = prettyJSON(item.Raw)
		}
	default:
		src.Text = item.Raw
	}

	if src.Name == "" {
		src.Name = "source " + strconv.Itoa(index+1)
	}
	return src
}

func prettyJSON(raw string) string {
	if raw == "" {
		return ""
	}
	if !gjson.Valid(raw) {
		return raw
	}
	return strings.TrimSpace(gjson.Get(raw, "@pretty").Raw)
}
