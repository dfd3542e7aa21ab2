package main

import "gitlab.com/paramountdax-exchange/affiliate_api/cmd"

func main() {
	cmd.Execute()
}
