package main

import "github.com/ChengaDev/passport-saml-metadata/cmd"

func main() {
	cmd.Execute()
}
