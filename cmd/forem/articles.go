package main

import (
	"fmt"
	"strconv"

	"forem-reader/internal/model"
	"forem-reader/internal/render"

	"github.com/spf13/cobra"
)

var (
	listTag     string
	listPage    int
	recentLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of articles for a tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeCache, err := newService()
		if err != nil {
			return err
		}
		defer closeCache()

		tag := listTag
		if tag == "" {
			tag = cfg.DefaultTag
		}
		filter := model.FilterParams{Tag: tag, Page: listPage}.Normalize()

		list, err := svc.GetArticles(cmd.Context(), filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			warning(out, "No articles for #%s (page %d)", filter.Tag, filter.Page)
			return nil
		}
		for _, a := range list {
			printCard(out, a, false)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an article, reading through the local cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, closeCache, err := newService()
		if err != nil {
			return err
		}
		defer closeCache()

		article, ok := svc.GetArticleDetail(cmd.Context(), id)
		if !ok {
			return fmt.Errorf("article %d is unavailable", id)
		}
		printDetail(cmd.OutOrStdout(), render.NewDetailView(article, false))
		return nil
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite [id]",
	Short: "Add an article to your favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer session.Close()

		svc, closeCache, err := newService()
		if err != nil {
			return err
		}
		defer closeCache()

		article, ok := svc.GetArticleDetail(cmd.Context(), id)
		if !ok {
			return fmt.Errorf("article %d is unavailable", id)
		}
		if err := session.SaveFavorite(cmd.Context(), article); err != nil {
			return fmt.Errorf("saving favorite: %w", err)
		}
		success(cmd.OutOrStdout(), "%s", render.FavoriteMessage(true))
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List your favorite articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer session.Close()

		list, err := session.Favorites(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			warning(out, "You have no favorites yet")
			return nil
		}
		for _, a := range list {
			printCard(out, a, true)
		}
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently viewed articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer session.Close()

		ids, err := session.Recent(cmd.Context(), recentLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			warning(out, "You have not opened any articles yet")
			return nil
		}

		cache, closeCache, err := openCache()
		if err != nil {
			return err
		}
		defer closeCache()

		for _, id := range ids {
			if article, ok := cache.TryRead(cmd.Context(), id); ok {
				printCard(out, article, false)
				continue
			}
			fmt.Fprintf(out, "  %s %s\n", cyan.Sprintf("%8d", id), faint.Sprint("(not cached)"))
		}
		return nil
	},
}

var prefetchCmd = &cobra.Command{
	Use:   "prefetch [id...]",
	Short: "Queue articles for the running server to cache",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, 0, len(args))
		for _, arg := range args {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer session.Close()

		if err := session.EnqueuePrefetch(cmd.Context(), ids...); err != nil {
			return fmt.Errorf("queueing prefetch: %w", err)
		}
		success(cmd.OutOrStdout(), "Queued %d article(s) for prefetch", len(ids))
		return nil
	},
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid article id %q", s)
	}
	return id, nil
}

func init() {
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Tag to list (defaults to default_tag from the config)")
	listCmd.Flags().IntVarP(&listPage, "page", "p", model.DefaultPage, "Page number")
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 10, "How many articles to show")
}
