// tuyamap 下载扫地机的实时地图文件。
//
// 用法：
//
//	tuyamap -client-id ID -client-secret SECRET -device-id DEVICE [-base-url URL] [-out DIR] [-timeout MS] [-v]
//
// 各参数也可以通过 TUYA_* 环境变量给定，见 [LoadConfig] 。
// 房间布局图写入 DIR/layout.bin ，清扫路径图写入 DIR/path.bin ，接口未返回的部分不会写入。
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cmstar/go-logx"
	"github.com/cmstar/go-tuyavacuum/tuya"
	"github.com/cmstar/go-tuyavacuum/vacuum"
)

const (
	LayoutFileName = "layout.bin"
	PathFileName   = "path.bin"
)

func main() {
	code := run(os.Args[1:], os.Getenv, os.Stderr, logx.NewStdLogger(nil))
	os.Exit(code)
}

// run 执行命令，返回进程的退出码：0 成功， 1 执行出错， 2 参数错误。
func run(args []string, getenv func(string) string, stderr io.Writer, logger logx.Logger) int {
	cfg, err := LoadConfig(args, getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if !cfg.Verbose {
		logger = logx.FilterLevel(logger, logx.LevelInfo|logx.LevelWarn|logx.LevelError|logx.LevelFatal)
	}

	v := vacuum.NewVacuum(vacuum.VacuumOp{
		BaseUrl:      cfg.BaseUrl,
		ClientId:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		DeviceId:     cfg.DeviceId,
		Timeout:      cfg.Timeout,
		Logger:       logger,
	})

	data, err := v.FetchRealtimeMapData()
	if err != nil {
		kv := []any{"DeviceId", cfg.DeviceId, "Error", err.Error()}

		var cloudErr *tuya.CloudError
		if errors.As(err, &cloudErr) {
			kv = append(kv, "Kind", cloudErr.Kind.String(), "Code", cloudErr.Code)
		}

		logger.Log(logx.LevelError, "fetch realtime map", kv...)
		return 1
	}

	written, err := writeMapData(cfg.OutDir, data)
	if err != nil {
		logger.Log(logx.LevelError, "write map data", "OutDir", cfg.OutDir, "Error", err.Error())
		return 1
	}

	logger.Log(logx.LevelInfo, "realtime map saved", "DeviceId", cfg.DeviceId, "Files", written)
	return 0
}

// writeMapData 将地图数据写入 dir ，返回写入的文件路径。为 nil 的部分不写入。
func writeMapData(dir string, data vacuum.MapData) ([]string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{LayoutFileName, data.LayoutData},
		{PathFileName, data.PathData},
	}

	var written []string
	for _, f := range files {
		if f.data == nil {
			continue
		}

		p := filepath.Join(dir, f.name)
		err = os.WriteFile(p, f.data, 0o644)
		if err != nil {
			return written, err
		}
		written = append(written, p)
	}

	return written, nil
}
