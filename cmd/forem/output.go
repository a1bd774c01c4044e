package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"forem-reader/internal/model"
	"forem-reader/internal/render"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
)

func success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, a...))
}

func warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

func printError(err error) {
	red.Fprintf(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, err)
}

// printCard writes the one-article summary used by list and favorites.
func printCard(w io.Writer, article model.Article, favorite bool) {
	marker := " "
	if favorite {
		marker = red.Sprint("♥")
	}
	fmt.Fprintf(w, "%s %s %s\n", marker, cyan.Sprintf("%8d", article.ID), bold.Sprint(article.Title))

	meta := []string{article.User.Name}
	if date := render.FormatDate(article.PublishedAt, render.CardDateLayout); date != "" {
		meta = append(meta, date)
	}
	if article.ReadingTimeMinutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min read", article.ReadingTimeMinutes))
	}
	fmt.Fprintf(w, "           %s\n", faint.Sprint(strings.Join(meta, " · ")))

	if tags := render.Tags(article); len(tags) > 0 {
		fmt.Fprintf(w, "           %s\n", yellow.Sprint("#"+strings.Join(tags, " #")))
	}
}

// printDetail writes the full view of one article.
func printDetail(w io.Writer, view render.DetailView) {
	bold.Fprintln(w, view.Title)
	faint.Fprintln(w, view.Subheader)
	if view.Description != "" {
		fmt.Fprintf(w, "\n%s\n", view.Description)
	}
	if view.Stats.Excerpt != "" {
		fmt.Fprintf(w, "\n%s\n", view.Stats.Excerpt)
	}
	fmt.Fprintln(w)
	if view.Stats.Words > 0 {
		fmt.Fprintf(w, "%d words, about %d min read\n", view.Stats.Words, view.Stats.Minutes)
	}
	if len(view.Tags) > 0 {
		yellow.Fprintf(w, "#%s\n", strings.Join(view.Tags, " #"))
	}
	if view.OriginalURL != "" {
		cyan.Fprintln(w, view.OriginalURL)
	}
}

// formatBytes renders n using binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
