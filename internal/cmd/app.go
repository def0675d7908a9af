package cmd

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/allanpk716/evrak_generator/internal/config"
	"github.com/allanpk716/evrak_generator/internal/datasource"
	"github.com/allanpk716/evrak_generator/internal/generator"
	"github.com/allanpk716/evrak_generator/internal/store"
)

// app 一次命令执行所需的组件
type app struct {
	env   *config.RuntimeEnvironment
	store *store.Store
	rules *datasource.RuleSet
	gen   *generator.Generator
}

// loadApp 读取配置并构建运行环境、历史存储和生成器
func loadApp(opts *GlobalOptions) (*app, error) {
	cfg, err := config.NewConfigManager().LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	env, err := config.NewRuntimeEnvironment(cfg, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("初始化运行环境失败: %w", err)
	}

	a := &app{env: env}
	if cfg.History.Enabled {
		path := cfg.History.DBPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(env.WorkDir, path)
		}
		st, err := store.New(path)
		if err != nil {
			env.Logger.Warn("运行历史不可用", zap.String("path", path), zap.Error(err))
		} else {
			a.store = st
		}
	}

	a.rules, err = generator.LoadRules(env)
	if err != nil {
		a.close()
		return nil, err
	}

	deps := generator.Deps{Rules: a.rules}
	if a.store != nil {
		deps.History = a.store
	}
	a.gen = generator.New(env, deps)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.env.Logger.Warn("关闭数据库失败", zap.Error(err))
		}
	}
	a.env.Close()
}
