package main

import (
	"fmt"
	"math"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/terrainscope/internal/app"
	"github.com/ayusman/terrainscope/internal/store"
	"github.com/ayusman/terrainscope/internal/terrain"
)

const timeLayout = "2006-01-02 15:04:05"

// classTable prints one row per terrain class.
func classTable(classes []terrain.Class, obstacles []terrain.ClassID) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Name", "Colour", "Obstacle"})
	for _, c := range classes {
		hex := ""
		if col, ok := colorful.MakeColor(c.Color); ok {
			hex = col.Hex()
		}
		obstacle := ""
		if slices.Contains(obstacles, c.ID) {
			obstacle = "yes"
		}
		t.AppendRow(table.Row{int(c.ID), c.Name, hex, obstacle})
	}
	return t.Render()
}

// reportTable prints one row per visited pair.
func reportTable(r *app.Report) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Image", "Label", "Status", "Contours", "Obstacles", "Largest Area"})
	for _, p := range r.Pairs {
		status := "ok"
		if p.Skipped {
			status = "skipped"
		} else if p.Pair.StemMismatch {
			status = "ok (name mismatch)"
		}

		largest := ""
		if len(p.Obstacles) > 0 {
			biggest := p.Obstacles[0].Area
			for _, o := range p.Obstacles[1:] {
				biggest = math.Max(biggest, o.Area)
			}
			largest = fmt.Sprintf("%.1f", biggest)
		}

		t.AppendRow(table.Row{p.Pair.Index, p.Pair.ImageName(), p.Pair.LabelName(), status, p.Contours, len(p.Obstacles), largest})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d/%d visited", len(r.Pairs), r.Available),
		"", fmt.Sprintf("%d ok", r.Processed), fmt.Sprintf("%d skipped", r.Skipped)})
	return t.Render()
}

// runTable prints one row per stored run.
func runTable(runs []*store.Run) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Started", "Status", "Processed", "Skipped", "Classes", "Min Area", "Images"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format(timeLayout),
			string(r.Status),
			r.Processed,
			r.Skipped,
			r.ObstacleClasses,
			r.MinArea,
			r.ImagesDir,
		})
	}
	return t.Render()
}
