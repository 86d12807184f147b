package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"sewernet/internal/sizer"
)

// promptAlgorithmChoice grounds on
// original_source/sewer_opt/cli.py's get_algorithm_choice: it
// re-prompts on anything but 1-5.
func promptAlgorithmChoice(in *bufio.Reader) (sizer.Algorithm, bool) {
	for {
		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("ALGORITHM SELECTION")
		fmt.Println(strings.Repeat("=", 80))
		fmt.Println("Available algorithms:")
		fmt.Println("  1. PSO  - Modified Particle Swarm Optimization")
		fmt.Println("  2. GA   - Genetic Algorithm (Standard)")
		fmt.Println("  3. AGA  - Adaptive Genetic Algorithm (Flowchart-based)")
		fmt.Println("  4. ACO  - Ant Colony Optimization")
		fmt.Println("  5. ALL  - Compare all algorithms")
		fmt.Println(strings.Repeat("=", 80))

		algo, compareAll := algorithmFromChoice(readLine(in, "Select algorithm (1/2/3/4/5): "))
		if algo != "" {
			return algo, compareAll
		}
		fmt.Println("Invalid choice! Please enter 1, 2, 3, 4, or 5.")
	}
}

// promptOptimizationSettings grounds on
// get_optimization_settings/get_pso_settings: Y picks the reference
// deployment's defaults (8 layouts, population 800, 90 iterations);
// N asks for all three.
func promptOptimizationSettings(in *bufio.Reader) (nLayouts, populationSize, iterations int) {
	for {
		switch strings.ToUpper(readLine(in, "\nUse default settings (Y/N): ")) {
		case "Y":
			nLayouts, populationSize, iterations = 8, 800, 90
		case "N":
			var ok bool
			if nLayouts, ok = readInt(in, "Enter number of top layouts: "); !ok {
				fmt.Println("Invalid input! Please enter numeric values.")
				continue
			}
			if populationSize, ok = readInt(in, "Enter population/swarm size: "); !ok {
				fmt.Println("Invalid input! Please enter numeric values.")
				continue
			}
			if iterations, ok = readInt(in, "Enter Max Iterations: "); !ok {
				fmt.Println("Invalid input! Please enter numeric values.")
				continue
			}
		default:
			fmt.Println("Please enter only Y or N.")
			continue
		}
		break
	}

	fmt.Println("\nSettings applied:")
	fmt.Printf("Top Layouts      : %d\n", nLayouts)
	fmt.Printf("Population Size  : %d\n", populationSize)
	fmt.Printf("Max Iterations   : %d\n", iterations)
	return nLayouts, populationSize, iterations
}

// promptSensitivitySettings grounds on ask_and_run_sensitivity's
// inner default prompt; a malformed custom list falls back to the
// reference deployment's grid, same as the source.
func promptSensitivitySettings(in *bufio.Reader) (swarmSizes, iterationsList []int) {
	defaultSwarmSizes := []int{200, 400, 600, 800, 1000}
	defaultIterationsList := []int{30, 60, 90, 120}

	if strings.ToUpper(readLine(in, "Use default sensitivity settings? (Y/N): ")) == "N" {
		sizes, sizesOK := readIntList(in, "Enter swarm sizes (comma-separated): ")
		iters, itersOK := readIntList(in, "Enter iteration list (comma-separated): ")
		if sizesOK && itersOK {
			return sizes, iters
		}
		fmt.Println("Invalid input! Using default values instead.")
	}
	return defaultSwarmSizes, defaultIterationsList
}

// promptComparisonSettings grounds on ask_and_run_comparison's inner
// default prompt (population 100, 30 iterations — a cheaper budget
// than the main sizing pass, since every algorithm pays this cost).
func promptComparisonSettings(in *bufio.Reader) (populationSize, iterations int) {
	if strings.ToUpper(readLine(in, "Use default comparison settings? (Y/N): ")) == "N" {
		pop, popOK := readInt(in, "Enter population/swarm size: ")
		iter, iterOK := readInt(in, "Enter Max Iterations: ")
		if popOK && iterOK {
			return pop, iter
		}
		fmt.Println("Invalid input! Using default values instead.")
	}
	return 100, 30
}

// askYesNo re-prompts until the user answers Y or N.
func askYesNo(in *bufio.Reader, prompt string) bool {
	for {
		switch strings.ToUpper(readLine(in, prompt)) {
		case "Y":
			return true
		case "N":
			return false
		default:
			fmt.Println("Please enter only Y or N.")
		}
	}
}

func readLine(in *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func readInt(in *bufio.Reader, prompt string) (int, bool) {
	v, err := strconv.Atoi(readLine(in, prompt))
	return v, err == nil
}

func readIntList(in *bufio.Reader, prompt string) ([]int, bool) {
	fields := strings.Split(readLine(in, prompt), ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, len(out) > 0
}
