package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/any-hub/ssr-gateway/internal/cache"
	"github.com/any-hub/ssr-gateway/internal/config"
	"github.com/any-hub/ssr-gateway/internal/entries"
	_ "github.com/any-hub/ssr-gateway/internal/entries/welcome"
	"github.com/any-hub/ssr-gateway/internal/logging"
	"github.com/any-hub/ssr-gateway/internal/renderer"
	"github.com/any-hub/ssr-gateway/internal/renderer/hooks"
	"github.com/any-hub/ssr-gateway/internal/server"
	"github.com/any-hub/ssr-gateway/internal/server/routes"
	"github.com/any-hub/ssr-gateway/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

const shutdownTimeout = 10 * time.Second

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	catalog, err := entries.NewCatalog(cfg, entries.List())
	if err != nil {
		fmt.Fprintf(stdErr, "构建入口目录失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["entries"] = len(catalog.List())
		fields["entry_keys"] = config.EntryKeys(cfg.Entries)
		fields["env"] = cfg.Global.Env
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 入口目录 → 磁盘缓存 → 渲染中间件 → Fiber server，
	// 所有请求共享同一份缓存与扩展点注册表。
	app, err := buildApp(cfg, catalog, hooks.NewRegistry(), logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化渲染服务失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["entries"] = len(catalog.List())
	fields["entry_keys"] = config.EntryKeys(cfg.Entries)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["env"] = cfg.Global.Env
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, app, cfg.Global.ListenPort, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("ssr-gateway", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 SSR_GATEWAY_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("SSR_GATEWAY_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

// buildApp 组装渲染中间件与 Fiber 应用。registry 在此处冻结，之后只读。
func buildApp(cfg *config.Config, catalog *entries.Catalog, registry *hooks.Registry, logger *logrus.Logger) (*fiber.App, error) {
	store, err := cache.NewStore(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("初始化缓存目录失败: %w", err)
	}
	manager := cache.NewManager(store, logger, cfg.IsProduction(), cfg.Global.CacheTTL.DurationValue())
	registry.Freeze()

	middleware, err := renderer.New(renderer.Params{
		Context:      renderer.Context{Config: cfg, Logger: logger},
		Entries:      catalog,
		Assets:       cfg.Assets,
		LoadJSConfig: cfg.Assets.LoadJS,
		Options:      renderer.OptionsFromConfig(cfg),
		Hooks:        registry,
		CacheManager: manager,
	})
	if err != nil {
		return nil, err
	}

	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Handler:    middleware,
		ListenPort: cfg.Global.ListenPort,
	})
	if err != nil {
		return nil, err
	}
	routes.RegisterDiagnosticsRoutes(app, catalog, registry)
	return app, nil
}

// serve 监听端口直到 ctx 结束，随后在 shutdownTimeout 内优雅关闭。
func serve(ctx context.Context, app *fiber.App, port int, logger *logrus.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	listening := make(chan struct{})

	g.Go(func() error {
		defer close(listening)
		logger.WithFields(logrus.Fields{
			"action": "listen",
			"port":   port,
		}).Info("Fiber 服务启动")
		return app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	})

	g.Go(func() error {
		select {
		case <-listening:
			return nil
		case <-gctx.Done():
		}
		logger.WithField("action", "shutdown").Info("收到退出信号，开始优雅关闭")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
