package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"coursefaq/config"
	"coursefaq/controllers"
	"coursefaq/services"
)

type rootOptions struct {
	configDir string
	debug     bool
}

func (o *rootOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configDir, "config", config.DefaultConfigDir, "directory containing config.yml")
	fs.BoolVar(&o.debug, "debug", false, "enable development logging")
}

// load reads the configuration and builds the logger shared by a command.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(o.debug || cfg.App.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

var pipelineProvider = func(cfg *config.Config, logger *zap.Logger) (controllers.QuestionAnswerer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	retriever, err := services.NewESRetriever(services.ESOptions{
		URL:      cfg.RAG.ElasticsearchURL,
		Index:    cfg.RAG.ElasticsearchIndex,
		Username: cfg.RAG.ElasticsearchUsername,
		Password: cfg.RAG.ElasticsearchPassword,
	})
	if err != nil {
		return nil, err
	}
	answerer := services.NewOpenAIAnswerer(services.OpenAIOptions{
		APIKey:  cfg.RAG.OpenAIAPIKey,
		BaseURL: cfg.RAG.OpenAIBaseURL,
		Model:   cfg.RAG.ChatModel,
		Timeout: cfg.RAG.RequestTimeout,
	})
	return services.NewRAGService(retriever, answerer,
		services.WithMaxResults(cfg.RAG.TopK),
		services.WithLogger(logger),
	), nil
}

// NewRootCommand returns the coursefaq command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "coursefaq",
		Short:        "Answers course questions from the FAQ index",
		SilenceUsage: true,
	}
	opts.addFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCommand(opts),
		newAskCommand(opts),
		newCoursesCommand(),
		newConsumeCommand(opts),
	)
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}
