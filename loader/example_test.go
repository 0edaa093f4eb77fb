package loader_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonwraymond/rescache/cache"
	"github.com/jonwraymond/rescache/loader"
)

func ExampleFileFactory() {
	root, _ := os.MkdirTemp("", "assets")
	defer os.RemoveAll(root)
	_ = os.WriteFile(filepath.Join(root, "grass.png"), []byte("GRASS"), 0o644)

	cfg := loader.DefaultConfig(root)
	cfg.Extensions = []string{".png"}

	factory, err := loader.FileFactory(cfg)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	textures, _ := cache.New(factory)

	ctx := context.Background()
	grass, _ := textures.Get(ctx, "grass.png")
	fmt.Println(string(grass.Data))

	_, err = textures.Get(ctx, "stone.png")
	fmt.Println(err != nil)
	// Output:
	// GRASS
	// true
}

func ExampleWatcher() {
	root, _ := os.MkdirTemp("", "assets")
	defer os.RemoveAll(root)

	factory, _ := loader.FileFactory(loader.DefaultConfig(root))
	textures, _ := cache.New(factory)

	w, err := loader.NewWatcher(loader.DefaultConfig(root), textures)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := w.Start(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}
	defer w.Stop()

	fmt.Println("watching")
	// Output: watching
}
