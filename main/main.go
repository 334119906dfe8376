package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xiaobogaga/colsql/executors"
	"github.com/xiaobogaga/colsql/plan"
	"github.com/xiaobogaga/colsql/storage"
	"github.com/xiaobogaga/colsql/util"
)

var (
	file    = flag.String("f", "", "the parquet file to scan")
	columns = flag.String("c", "", "comma separated column paths to print, like id,address.zip. Default all columns")
	where   = flag.String("w", "", "an optional filter, like score=5 or name!='bob'")
	limit   = flag.Int64("limit", 0, "print at most that many rows, 0 means no limit")
	logPath = flag.String("log", fmt.Sprintf("/tmp/colsql-%v.log", time.Now().Unix()), "the log path")
	verbose = flag.Bool("verbose", false, "whether print logs on console too")
)

func main() {
	flag.Parse()
	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	err := util.InitLogger(*logPath, 1024*4, time.Second, *verbose)
	if err != nil {
		fmt.Printf("err: %v\n", err)
		os.Exit(1)
	}
	log := util.GetLog("main")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	ctx, cancel := context.WithCancel(context.Background())
	go shutdown(sig, cancel)

	err = run(ctx)
	cancel()
	if err != nil {
		log.ErrorF("scan %s failed: %v", *file, err)
		fmt.Printf("err: %v\n", err)
	}
	util.CloseLog()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	store, err := storage.OpenParquetFile(*file)
	if err != nil {
		return err
	}
	defer store.Close()
	schema := store.Schema()
	paths := schema.Columns()
	if *columns != "" {
		paths = strings.Split(*columns, ",")
		for i := range paths {
			paths[i] = strings.TrimSpace(paths[i])
		}
	}
	if len(paths) == 0 {
		return errors.New("no column to print")
	}
	projections, err := plan.BuildColumns(schema, paths...)
	if err != nil {
		return err
	}
	scan := &plan.Scan{Projections: projections, Limit: *limit}
	if *where != "" {
		scan.Filter, err = plan.BuildComparison(schema, *where)
		if err != nil {
			return err
		}
	}
	writer := executors.NewTableWriter(os.Stdout, paths...)
	sent, err := scan.Run(ctx, store, writer)
	writer.Render()
	fmt.Printf("%d rows\n", sent)
	return err
}

func shutdown(sig <-chan os.Signal, cancel context.CancelFunc) {
	<-sig
	cancel()
}
