package main

import (
	"fmt"
	"log"

	"github.com/rotalog/internal/config"
	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/service"
	"github.com/rs/zerolog"
)

// 示例数据生成器，便于本地联调
func main() {
	cfg := config.Load()
	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	symlinks := service.NewSymlinkService()
	tags := service.NewTagService(cfg.HasMicro)
	series := service.NewSeriesService(symlinks)
	rss := service.NewRssService(gdb, symlinks)
	entries := service.NewEntryService(gdb, symlinks, tags, series, rss)
	rotation := service.NewRotationService(gdb, rss, zerolog.Nop())

	fmt.Println("开始生成示例数据...")

	samples := []service.EntryPayload{
		{
			Title:     strPtr("Hello"),
			Body:      "A short note, rendered in full.",
			Signature: "seed-1",
			Tags:      []string{"notes"},
		},
		{
			Title:     strPtr("On rotation"),
			Body:      longArticle("Entries move through the front page in a fixed circular order."),
			Signature: "seed-2",
			Tags:      []string{"engine", "notes"},
			Symlink:   strPtr("on-rotation"),
		},
		{
			Title:     strPtr("About"),
			Body:      "This instance is seeded with sample data.",
			Signature: "seed-3",
			Metalink:  strPtr("about"),
		},
		{
			Title:     strPtr("A tale, part one"),
			Body:      longArticle("The story begins."),
			Signature: "seed-4",
			Series:    []service.SeriesPosition{{Series: "a-tale", Index: 1}},
		},
		{
			Title:     strPtr("A tale, part two"),
			Body:      longArticle("The story continues."),
			Signature: "seed-5",
			Series:    []service.SeriesPosition{{Series: "a-tale", Index: 2}},
		},
		{
			Signature: "seed-6",
			URL:       strPtr("https://example.com/moved-elsewhere"),
		},
	}

	for _, payload := range samples {
		id, err := entries.Create(payload)
		if err != nil {
			log.Fatal("创建条目失败:", err)
		}
		fmt.Printf("创建条目 %d (%s)\n", id, payload.Signature)
	}

	// 转动几次，让 RSS 队列有内容
	for i := 0; i < 3; i++ {
		if err := rotation.Rotate(); err != nil {
			log.Fatal("轮换失败:", err)
		}
	}

	fmt.Println("示例数据生成完成！")
}

func strPtr(s string) *string {
	return &s
}

func longArticle(lead string) string {
	body := lead + "\n\n"
	for i := 0; i < 40; i++ {
		body += "The quick brown fox jumps over the lazy dog. "
	}
	return body
}
