package notion

import (
	"strings"
	"time"

	"github.com/openastro/papersync/internal/sync"
)

// pageObject is the slice of the Notion page schema this binding reads.
type pageObject struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type property struct {
	Title    []richText `json:"title,omitempty"`
	RichText []richText `json:"rich_text,omitempty"`
	Date     *dateValue `json:"date,omitempty"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type dateValue struct {
	Start string `json:"start"`
}

func (p pageObject) toRecord() sync.Record {
	rec := sync.Record{ID: p.ID}
	if title, ok := p.Properties["Title"]; ok {
		parts := make([]string, 0, len(title.Title))
		for _, rt := range title.Title {
			parts = append(parts, rt.PlainText)
		}
		rec.Title = strings.Join(parts, "")
	}
	if date, ok := p.Properties["Date"]; ok && date.Date != nil {
		if ts, err := parseNotionDate(date.Date.Start); err == nil {
			rec.PublishedAt = ts
		}
	}
	return rec
}

// parseNotionDate accepts both date-only and full timestamp starts.
func parseNotionDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}

// buildProperties maps an item onto the database's property schema.
func buildProperties(item sync.Item, priority bool, sourceName string) map[string]any {
	keywords := make([]map[string]any, 0, len(item.Matched))
	for _, kw := range item.Matched {
		keywords = append(keywords, map[string]any{"name": kw})
	}

	props := map[string]any{
		"Title": map[string]any{
			"title": []map[string]any{
				{"text": map[string]any{"content": item.Title}},
			},
		},
		"URL": map[string]any{"url": item.SourceURL},
		"PDF": map[string]any{"url": item.PDFURL},
		"Date": map[string]any{
			"date": map[string]any{"start": item.PublishedAt.UTC().Format(time.RFC3339)},
		},
		"Abstract": map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": item.Abstract}},
			},
		},
		"Score":    map[string]any{"number": item.Score},
		"Keywords": map[string]any{"multi_select": keywords},
		"Category": map[string]any{"select": map[string]any{"name": item.Category}},
		"Priority": map[string]any{"checkbox": priority},
		"Source":   map[string]any{"select": map[string]any{"name": sourceName}},
	}
	if item.Authors != "" {
		props["Authors"] = map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": item.Authors}},
			},
		}
	}
	return props
}
