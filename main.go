/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tasklane/apiserver/cmd"

func main() {
	cmd.Execute()
}
