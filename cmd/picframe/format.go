package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"picframe/internal/frame"
)

func imageRows(images []*frame.ImageSummary, current string) [][]string {
	rows := make([][]string, len(images))
	for i, img := range images {
		marker := ""
		if img.Filename == current {
			marker = "*"
		}
		uploader := img.UploaderName
		if uploader != img.UploaderIP {
			uploader += " (" + img.UploaderIP + ")"
		}
		rows[i] = []string{
			marker,
			img.Filename,
			humanize.IBytes(uint64(max(img.Size, 0))),
			img.Uploaded,
			uploader,
		}
	}
	return rows
}

func userRows(users []*frame.UserSummary) [][]string {
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{u.Address, u.Name, strconv.Itoa(u.ImageCount)}
	}
	return rows
}

func historyRows(events []*frame.DisplayEvent, now time.Time) [][]string {
	rows := make([][]string, len(events))
	for i, e := range events {
		duration := ""
		if e.FinishedAt.Valid {
			duration = e.FinishedAt.Time.Sub(e.StartedAt).Truncate(time.Millisecond).String()
		}
		rows[i] = []string{
			e.StartedAt.Format("2006-01-02 15:04:05"),
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			e.Trigger,
			e.Filename,
			e.Status,
			duration,
			e.Error,
		}
	}
	return rows
}
