package main

import "campus-match-backend/cmd"

func main() {
	cmd.Execute()
}
