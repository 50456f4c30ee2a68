package reporting

import (
	"strings"

	"github.com/crytic/harvester/compilation"
	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
)

// MaxBytecodeLength is the number of bytecode characters kept by TruncateBytecode in summaries.
const MaxBytecodeLength = 100

// TruncateBytecode shortens bytecode longer than max characters to its first max characters followed by "...".
func TruncateBytecode(bytecode string, max int) string {
	if max < 0 || len(bytecode) <= max {
		return bytecode
	}
	return bytecode[:max] + "..."
}

// SummarizeResult renders the records of a repository, in order, as a human-readable LogBuffer. Bytecode is
// truncated to MaxBytecodeLength characters if requested.
func SummarizeResult(result types.RepositoryBuildResult, truncate bool) *logging.LogBuffer {
	buffer := logging.NewLogBuffer()
	interfaces, contracts := types.CountByKind(result.Contracts)

	buffer.Append(colors.Bold, "Repository: ", colors.Reset, result.Repository)
	if result.Platform != "" {
		buffer.Append(" (", result.Platform, ")")
	}
	buffer.Append(": ", len(result.Contracts), " records, ", interfaces, " interfaces, ", contracts, " contracts")

	bytecodeInfos := DescribeBytecode(result.Contracts)
	for _, record := range result.Contracts {
		bytecode := record.Bytecode
		if truncate {
			bytecode = TruncateBytecode(bytecode, MaxBytecodeLength)
		}
		kindColor, kindLabel := colors.Green, "Contract"
		if record.IsInterface() {
			kindColor, kindLabel = colors.Cyan, "Interface"
		}

		buffer.Append("\n", colors.Bold, "Contract Name: ", colors.Reset, record.Name)
		buffer.Append("\n\tNumber of imports: ", len(record.Imports))
		buffer.Append("\n\tContract Type: ", kindColor, kindLabel, colors.Reset)
		if info, ok := bytecodeInfos[record.Name]; ok {
			buffer.Append("\n\tCode Size: ", info.CodeSize, " bytes")
			if len(info.UnlinkedLibraries) > 0 {
				buffer.Append("\n\tUnlinked Libraries: ", colors.YellowBold, strings.Join(info.UnlinkedLibraries, ", "), colors.Reset)
			}
		}
		buffer.Append("\n\tBytecode: ", bytecode)
	}
	return buffer
}

// SummarizeRun renders the outcome of every processed repository as a LogBuffer, grouped by status.
func SummarizeRun(results []compilation.SelectionResult) *logging.LogBuffer {
	buffer := logging.NewLogBuffer()

	counts := make(map[compilation.SelectionStatus]int)
	for _, result := range results {
		counts[result.Status]++
	}
	buffer.Append(colors.Bold, "Processed ", len(results), " repositories: ", colors.Reset,
		colors.GreenBold, counts[compilation.SelectionStatusBuilt], " built", colors.Reset, ", ",
		colors.RedBold, counts[compilation.SelectionStatusBuildFailed], " failed", colors.Reset, ", ",
		colors.YellowBold, counts[compilation.SelectionStatusUnsupported], " unsupported", colors.Reset,
	)

	for _, result := range results {
		switch result.Status {
		case compilation.SelectionStatusBuilt:
			buffer.Append("\n", colors.GreenBold, "[built] ", colors.Reset, result.Result.Repository,
				" with ", result.Platform, " (", result.Mode, "): ", len(result.Result.Contracts), " records")
		case compilation.SelectionStatusBuildFailed:
			buffer.Append("\n", colors.RedBold, "[failed] ", colors.Reset, result.Result.Repository)
		default:
			buffer.Append("\n", colors.YellowBold, "[unsupported] ", colors.Reset, result.Result.Repository)
		}
	}
	return buffer
}
