package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-documix/internal/converter"
	"github.com/nerdneilsfield/go-documix/internal/logger"
)

// NewToolsCommand 创建 tools 子命令，检查外部转换工具的可用状态
func NewToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "检查外部转换工具的可用状态",
		Long: `检查 documix 依赖的外部转换工具是否已安装，
并给出缺失工具的安装建议。工具不可用时对应的转换方式会被跳过，
由链上的下一个方式接手。`,
		Run: func(cmd *cobra.Command, args []string) {
			log := logger.NewLogger(debugMode)
			defer func() {
				_ = log.Sync()
			}()

			runner := converter.NewToolRunner(log)

			fmt.Println("外部转换工具状态:")
			fmt.Println()

			tools := runner.GetAllTools()
			names := make([]string, 0, len(tools))
			for name := range tools {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				tool := tools[name]
				if runner.IsToolAvailable(tool.Name) {
					version, err := runner.GetToolVersion(tool.Name)
					if err != nil || version == "" {
						version = "unknown version"
					}
					path, _ := runner.GetToolPath(tool.Name)
					fmt.Printf("  ✅ %-14s %s\n", tool.Name, version)
					if path != "" {
						fmt.Printf("     %s\n", path)
					}
				} else {
					fmt.Printf("  ❌ %-14s not found (%s)\n", tool.Name, tool.Description)
					if suggestion := runner.SuggestInstallation(tool.Name); suggestion != "" {
						fmt.Printf("     install: %s\n", suggestion)
					}
				}
				fmt.Println()
			}
		},
	}
}
